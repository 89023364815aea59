package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lingoplatform/admin-backend/internal/common"
	"github.com/lingoplatform/admin-backend/internal/domain"
	"github.com/lingoplatform/admin-backend/internal/repository"
	"github.com/lingoplatform/admin-backend/pkg/cache"
	"github.com/lingoplatform/admin-backend/pkg/diff"
	"github.com/lingoplatform/admin-backend/pkg/logger"
	"github.com/lingoplatform/admin-backend/pkg/serializer"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Export formats
const (
	ExportCSV  = "csv"
	ExportJSON = "json"
)

// CSVHeader is the fixed column order of CSV exports
var CSVHeader = []string{"ID", "User", "Action", "Area", "Status", "IP Address", "User Agent", "Performed At", "Details"}

// AuditConfig limits for query and export
type AuditConfig struct {
	ExportMaxDays  int
	DefaultPerPage int
	MaxPerPage     int
	CacheTTL       time.Duration
}

// DefaultAuditConfig returns the default audit limits
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		ExportMaxDays:  366,
		DefaultPerPage: 15,
		MaxPerPage:     100,
		CacheTTL:       cache.TTLAuditLog,
	}
}

// RecordInput describes one auditable action
type RecordInput struct {
	Actor      domain.Actor
	Action     string
	Area       string
	TargetType string
	TargetID   uint64
	Old        map[string]interface{}
	New        map[string]interface{}
	Status     string
	Metadata   map[string]interface{}
}

// ExportResult is a rendered export file
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
	Count       int
}

// AuditService is the single, append-only audit trail
type AuditService struct {
	repo  *repository.AuditLogRepository
	cache cache.Service
	clock Clock
	cfg   AuditConfig
}

// NewAuditService creates a new AuditService. cacheSvc may be nil.
func NewAuditService(repo *repository.AuditLogRepository, cacheSvc cache.Service, clock Clock, cfg AuditConfig) *AuditService {
	if clock == nil {
		clock = SystemClock
	}
	if cacheSvc == nil {
		cacheSvc = cache.NewService(nil)
	}
	return &AuditService{repo: repo, cache: cacheSvc, clock: clock, cfg: cfg}
}

// WithTx returns an AuditService whose writes join tx
func (s *AuditService) WithTx(tx *gorm.DB) *AuditService {
	return &AuditService{repo: s.repo.WithTx(tx), cache: s.cache, clock: s.clock, cfg: s.cfg}
}

// Record writes one audit entry. The shape of changes depends on the action.
func (s *AuditService) Record(in RecordInput) (*domain.AuditLog, error) {
	changes := BuildChanges(in.Action, in.Old, in.New, in.Metadata)
	data, err := serializer.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit changes: %w", err)
	}

	status := in.Status
	if status == "" {
		status = domain.AuditSuccess
	}

	entry := &domain.AuditLog{
		UserID:        in.Actor.UserID,
		Action:        in.Action,
		Area:          in.Area,
		AuditableType: in.TargetType,
		AuditableID:   in.TargetID,
		Status:        status,
		Changes:       datatypes.JSON(data),
		IPAddress:     in.Actor.IPAddress,
		UserAgent:     in.Actor.UserAgent,
		PerformedAt:   s.clock(),
	}
	if err := s.repo.Create(entry); err != nil {
		return nil, fmt.Errorf("failed to write audit log: %w", err)
	}
	return entry, nil
}

// BuildChanges computes the changes payload of an audit entry:
// update is a diff, create the flat new state, delete the flat old state,
// status actions the status pair; metadata is merged into everything but create/delete.
func BuildChanges(action string, old, new, metadata map[string]interface{}) map[string]interface{} {
	var changes map[string]interface{}

	switch action {
	case domain.ActionCreate:
		return copyMap(new)
	case domain.ActionDelete:
		return copyMap(old)
	case domain.ActionUpdate:
		changes = diff.ToMap(diff.Fields(old, new))
	case domain.ActionPublish, domain.ActionUnpublish, domain.ActionStatusUpdate:
		changes = map[string]interface{}{
			"status": diff.Change{Old: old["status"], New: new["status"]},
		}
	default:
		changes = diff.ToMap(diff.Fields(old, new))
	}

	for k, v := range metadata {
		changes[k] = v
	}
	return changes
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Get returns a single entry. Entries never change, so they are cached freely.
func (s *AuditService) Get(ctx context.Context, id uint64) (*domain.AuditLog, error) {
	key := cache.AuditLogKey(id)

	var cached domain.AuditLog
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.GetLogger().Warn().Err(err).Uint64("audit_log_id", id).Msg("audit cache read failed")
	}

	entry, err := s.repo.WithContext(ctx).FindByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, entry, s.cfg.CacheTTL); err != nil {
		logger.GetLogger().Warn().Err(err).Uint64("audit_log_id", id).Msg("audit cache write failed")
	}
	return entry, nil
}

// Query returns one page of entries; page and per_page are normalised in place
func (s *AuditService) Query(ctx context.Context, filter *domain.AuditFilter) ([]domain.AuditLog, int64, error) {
	q, err := s.resolve(*filter)
	if err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = s.cfg.DefaultPerPage
	}
	if filter.PerPage > s.cfg.MaxPerPage {
		filter.PerPage = s.cfg.MaxPerPage
	}
	q.Offset = (filter.Page - 1) * filter.PerPage
	q.Limit = filter.PerPage

	return s.repo.WithContext(ctx).List(q)
}

// Export renders every matching entry, oldest first. Both dates are required
// and the range is bounded by ExportMaxDays.
func (s *AuditService) Export(ctx context.Context, filter domain.AuditFilter, format string) (*ExportResult, error) {
	if format == "" {
		format = ExportCSV
	}
	if format != ExportCSV && format != ExportJSON {
		return nil, common.NewValidationError("format", "must be one of: csv json")
	}
	if filter.StartDate == "" || filter.EndDate == "" {
		return nil, common.ErrExportDatesRequired
	}

	q, err := s.resolve(filter)
	if err != nil {
		return nil, err
	}
	// To is exclusive (end date + 1 day)
	days := int(q.To.Sub(*q.From).Hours()/24) - 1
	if days > s.cfg.ExportMaxDays {
		return nil, fmt.Errorf("%w (maximum %d days)", common.ErrExportRangeTooLarge, s.cfg.ExportMaxDays)
	}

	q.SortBy = "performed_at"
	q.SortOrder = "asc"
	entries, err := s.repo.WithContext(ctx).FindAll(q)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, common.ErrNoAuditLogsToExport
	}

	filename := fmt.Sprintf("audit_logs_%s_%s.%s", filter.StartDate, filter.EndDate, format)
	if format == ExportJSON {
		data, err := serializer.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("failed to encode export: %w", err)
		}
		return &ExportResult{Data: data, ContentType: "application/json", Filename: filename, Count: len(entries)}, nil
	}

	data, err := renderCSV(entries)
	if err != nil {
		return nil, err
	}
	return &ExportResult{Data: data, ContentType: "text/csv", Filename: filename, Count: len(entries)}, nil
}

func renderCSV(entries []domain.AuditLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, err
	}

	for _, e := range entries {
		user := "System"
		if e.UserID != nil {
			user = strconv.FormatUint(*e.UserID, 10)
		}
		details := string(e.Changes)
		if details == "" {
			details = "{}"
		}
		record := []string{
			strconv.FormatUint(e.ID, 10),
			user,
			e.Action,
			e.Area,
			e.Status,
			e.IPAddress,
			e.UserAgent,
			e.PerformedAt.UTC().Format(time.RFC3339),
			details,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to render csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Summary counts matching entries per action, status and area
func (s *AuditService) Summary(ctx context.Context, filter domain.AuditFilter) (*domain.AuditSummary, error) {
	q, err := s.resolve(filter)
	if err != nil {
		return nil, err
	}
	repo := s.repo.WithContext(ctx)

	summary := &domain.AuditSummary{}
	if summary.ByAction, err = repo.CountBy(q, "action"); err != nil {
		return nil, err
	}
	if summary.ByStatus, err = repo.CountBy(q, "status"); err != nil {
		return nil, err
	}
	if summary.ByArea, err = repo.CountBy(q, "area"); err != nil {
		return nil, err
	}
	for _, n := range summary.ByAction {
		summary.Total += n
	}
	return summary, nil
}

// resolve parses and validates the textual filter
func (s *AuditService) resolve(filter domain.AuditFilter) (repository.AuditQuery, error) {
	q := repository.AuditQuery{
		Action:        filter.Action,
		Area:          filter.Area,
		Status:        filter.Status,
		AuditableType: filter.AuditableType,
		AuditableID:   filter.AuditableID,
		SortBy:        filter.SortBy,
		SortOrder:     filter.SortOrder,
	}

	if filter.UserID != "" {
		id, err := strconv.ParseUint(filter.UserID, 10, 64)
		if err != nil {
			return q, common.NewValidationError("user_id", "must be a positive integer")
		}
		q.UserID = &id
	}

	if filter.StartDate != "" {
		from, err := time.Parse(dateLayout, filter.StartDate)
		if err != nil {
			return q, common.NewValidationError("start_date", "must be a date (YYYY-MM-DD)")
		}
		q.From = &from
	}
	if filter.EndDate != "" {
		end, err := time.Parse(dateLayout, filter.EndDate)
		if err != nil {
			return q, common.NewValidationError("end_date", "must be a date (YYYY-MM-DD)")
		}
		to := end.AddDate(0, 0, 1)
		q.To = &to
	}
	if q.From != nil && q.To != nil && !q.From.Before(*q.To) {
		return q, common.NewValidationError("end_date", "must be on or after start_date")
	}

	return q, nil
}
