package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds. Wrap them with fmt.Errorf("%w: ...") and match with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Lifecycle errors
var (
	ErrContentTypeNotFound   = fmt.Errorf("%w: unknown content type", ErrNotFound)
	ErrContentNotFound       = fmt.Errorf("%w: content not found", ErrNotFound)
	ErrVersionNotFound       = fmt.Errorf("%w: version not found", ErrNotFound)
	ErrPendingReviewNotFound = fmt.Errorf("%w: no pending review found", ErrNotFound)
	ErrAuditLogNotFound      = fmt.Errorf("%w: audit log not found", ErrNotFound)
	ErrNoAuditLogsToExport   = fmt.Errorf("%w: no audit logs found for the given filters", ErrNotFound)

	ErrAlreadyPublished     = fmt.Errorf("%w: content is already published", ErrConflict)
	ErrNotPublished         = fmt.Errorf("%w: content is not published", ErrConflict)
	ErrArchived             = fmt.Errorf("%w: content is archived", ErrConflict)
	ErrDeletePublished      = fmt.Errorf("%w: cannot delete published content; archive or unpublish it first", ErrConflict)
	ErrSubmitRequiresDraft  = fmt.Errorf("%w: only draft content can be submitted for review", ErrConflict)
	ErrReviewAlreadyPending = fmt.Errorf("%w: content already has a pending review", ErrConflict)
	ErrExportDatesRequired  = fmt.Errorf("%w: start_date and end_date are required for export", ErrConflict)
	ErrExportRangeTooLarge  = fmt.Errorf("%w: export date range is too large", ErrConflict)
)

// ValidationError carries per-field messages
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) match a *ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
