package service

import (
	"context"
	"strings"

	"github.com/lingoplatform/admin-backend/internal/common"
	"github.com/lingoplatform/admin-backend/internal/domain"
	"github.com/lingoplatform/admin-backend/internal/repository"
	"github.com/lingoplatform/admin-backend/pkg/diff"
	"github.com/lingoplatform/admin-backend/pkg/logger"
	"gorm.io/gorm"
)

// attributes only the lifecycle operations may change
var guardedAttributes = []string{"id", "status", "review_status", "published_at", "created_at", "updated_at"}

// LifecycleService enforces legal status/review transitions. Every operation
// runs in one transaction spanning guard check, snapshot, mutation and audit entry.
type LifecycleService struct {
	db       *gorm.DB
	registry *repository.Registry
	versions *VersionService
	audits   *AuditService
	reviews  *repository.ReviewRepository
	clock    Clock
}

// NewLifecycleService 생성자
func NewLifecycleService(
	db *gorm.DB,
	registry *repository.Registry,
	versions *VersionService,
	audits *AuditService,
	reviews *repository.ReviewRepository,
	clock Clock,
) *LifecycleService {
	if clock == nil {
		clock = SystemClock
	}
	return &LifecycleService{
		db:       db,
		registry: registry,
		versions: versions,
		audits:   audits,
		reviews:  reviews,
		clock:    clock,
	}
}

// lifecycleTx groups the transaction-bound collaborators of one operation
type lifecycleTx struct {
	contents repository.ContentRepository
	versions *VersionService
	audits   *AuditService
	reviews  *repository.ReviewRepository
	item     domain.ContentItem
	actor    domain.Actor
}

func (t *lifecycleTx) serialize() (map[string]interface{}, error) {
	return t.contents.Serialize(t.item)
}

func (t *lifecycleTx) snapshot(label string) (*domain.ContentVersion, error) {
	return t.versions.Snapshot(t.contents, t.item, label, t.actor.UserID)
}

func (t *lifecycleTx) record(action string, old, new, metadata map[string]interface{}) error {
	_, err := t.audits.Record(RecordInput{
		Actor:      t.actor,
		Action:     action,
		Area:       t.contents.Type(),
		TargetType: t.contents.Model(),
		TargetID:   t.item.GetID(),
		Old:        old,
		New:        new,
		Metadata:   metadata,
	})
	return err
}

// mutate saves the item after fn changed it and records action with the before/after state
func (t *lifecycleTx) mutate(action string, metadata map[string]interface{}, fn func()) error {
	old, err := t.serialize()
	if err != nil {
		return err
	}
	fn()
	if err := t.contents.Save(t.item); err != nil {
		return err
	}
	updated, err := t.serialize()
	if err != nil {
		return err
	}
	return t.record(action, old, updated, metadata)
}

func (s *LifecycleService) begin(tx *gorm.DB, contents repository.ContentRepository, actor domain.Actor) *lifecycleTx {
	return &lifecycleTx{
		contents: contents.WithTx(tx),
		versions: s.versions.WithTx(tx),
		audits:   s.audits.WithTx(tx),
		reviews:  s.reviews.WithTx(tx),
		actor:    actor,
	}
}

// run loads the item inside a transaction and applies fn; any error rolls everything back
func (s *LifecycleService) run(ctx context.Context, contentType string, id uint64, action string, actor domain.Actor, fn func(t *lifecycleTx) error) (domain.ContentItem, error) {
	contents, err := s.registry.Get(contentType)
	if err != nil {
		return nil, err
	}

	var result domain.ContentItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t := s.begin(tx, contents, actor)
		item, err := t.contents.Find(id)
		if err != nil {
			return err
		}
		t.item = item

		if err := fn(t); err != nil {
			return err
		}
		result = t.item
		return nil
	})

	s.observe(contentType, action, id, actor, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *LifecycleService) observe(contentType, action string, id uint64, actor domain.Actor, err error) {
	result := resultLabel(err)
	lifecycleTransitions.WithLabelValues(contentType, action, result).Inc()

	if result != "error" {
		return
	}
	event := logger.GetLogger().Error().Err(err).
		Str("area", contentType).
		Str("action", action).
		Uint64("content_id", id)
	if actor.UserID != nil {
		event = event.Uint64("user_id", *actor.UserID)
	}
	event.Msg("lifecycle operation failed")
}

// Get returns the current state of one item
func (s *LifecycleService) Get(ctx context.Context, contentType string, id uint64) (domain.ContentItem, error) {
	contents, err := s.registry.Get(contentType)
	if err != nil {
		return nil, err
	}
	return contents.WithTx(s.db.WithContext(ctx)).Find(id)
}

// Create stores a new item as draft and records a create entry with its full state
func (s *LifecycleService) Create(ctx context.Context, contentType string, attrs map[string]interface{}, actor domain.Actor) (domain.ContentItem, error) {
	contents, err := s.registry.Get(contentType)
	if err != nil {
		return nil, err
	}
	if err := checkAttributes(attrs); err != nil {
		return nil, err
	}

	var result domain.ContentItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t := s.begin(tx, contents, actor)
		t.item = t.contents.New()

		if err := t.contents.Fill(t.item, attrs); err != nil {
			return err
		}
		t.item.SetStatus(domain.StatusDraft)
		t.item.SetReviewStatus(domain.ReviewNone)
		if err := t.contents.Validate(t.item); err != nil {
			return err
		}
		if err := t.contents.Create(t.item); err != nil {
			return err
		}

		created, err := t.serialize()
		if err != nil {
			return err
		}
		if err := t.record(domain.ActionCreate, nil, created, nil); err != nil {
			return err
		}
		result = t.item
		return nil
	})

	s.observe(contentType, domain.ActionCreate, 0, actor, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Update snapshots the current state (manual), applies attrs and records the diff
func (s *LifecycleService) Update(ctx context.Context, contentType string, id uint64, attrs map[string]interface{}, actor domain.Actor) (domain.ContentItem, error) {
	if err := checkAttributes(attrs); err != nil {
		return nil, err
	}

	return s.run(ctx, contentType, id, domain.ActionUpdate, actor, func(t *lifecycleTx) error {
		if _, err := t.snapshot(domain.LabelManual); err != nil {
			return err
		}
		old, err := t.serialize()
		if err != nil {
			return err
		}

		if err := t.contents.Fill(t.item, attrs); err != nil {
			return err
		}
		if err := t.contents.Validate(t.item); err != nil {
			return err
		}
		if err := t.contents.Save(t.item); err != nil {
			return err
		}

		updated, err := t.serialize()
		if err != nil {
			return err
		}
		if diff.Empty(diff.Fields(old, updated)) {
			logger.GetLogger().Debug().
				Str("area", t.contents.Type()).
				Uint64("id", t.item.GetID()).
				Msg("update without attribute changes")
		}
		return t.record(domain.ActionUpdate, old, updated, nil)
	})
}

// Publish makes a draft item public
func (s *LifecycleService) Publish(ctx context.Context, contentType string, id uint64, actor domain.Actor) (domain.ContentItem, error) {
	return s.run(ctx, contentType, id, domain.ActionPublish, actor, func(t *lifecycleTx) error {
		switch t.item.GetStatus() {
		case domain.StatusPublished:
			return common.ErrAlreadyPublished
		case domain.StatusArchived:
			return common.ErrArchived
		}

		if _, err := t.snapshot(domain.LabelBeforePublish); err != nil {
			return err
		}
		return t.mutate(domain.ActionPublish, nil, func() {
			now := s.clock()
			t.item.SetStatus(domain.StatusPublished)
			t.item.SetPublishedAt(&now)
		})
	})
}

// Unpublish returns a published item to draft
func (s *LifecycleService) Unpublish(ctx context.Context, contentType string, id uint64, actor domain.Actor) (domain.ContentItem, error) {
	return s.run(ctx, contentType, id, domain.ActionUnpublish, actor, func(t *lifecycleTx) error {
		if !t.item.IsPublished() {
			return common.ErrNotPublished
		}

		if _, err := t.snapshot(domain.LabelBeforeUnpublish); err != nil {
			return err
		}
		return t.mutate(domain.ActionUnpublish, nil, func() {
			t.item.SetStatus(domain.StatusDraft)
			t.item.SetPublishedAt(nil)
		})
	})
}

// Archive retires a draft or published item. Archived is terminal.
func (s *LifecycleService) Archive(ctx context.Context, contentType string, id uint64, actor domain.Actor) (domain.ContentItem, error) {
	return s.run(ctx, contentType, id, domain.ActionStatusUpdate, actor, func(t *lifecycleTx) error {
		if t.item.GetStatus() == domain.StatusArchived {
			return common.ErrArchived
		}

		if _, err := t.snapshot(domain.LabelBeforeArchive); err != nil {
			return err
		}
		return t.mutate(domain.ActionStatusUpdate, nil, func() {
			t.item.SetStatus(domain.StatusArchived)
		})
	})
}

// ChangeStatus dispatches a requested target status to Publish, Unpublish or Archive
func (s *LifecycleService) ChangeStatus(ctx context.Context, contentType string, id uint64, target domain.ContentStatus, actor domain.Actor) (domain.ContentItem, error) {
	switch target {
	case domain.StatusPublished:
		return s.Publish(ctx, contentType, id, actor)
	case domain.StatusDraft:
		return s.Unpublish(ctx, contentType, id, actor)
	case domain.StatusArchived:
		return s.Archive(ctx, contentType, id, actor)
	default:
		return nil, common.NewValidationError("status", "must be one of: draft published archived")
	}
}

// Delete removes an item that is not published. Its versions and audit entries remain.
func (s *LifecycleService) Delete(ctx context.Context, contentType string, id uint64, actor domain.Actor) error {
	_, err := s.run(ctx, contentType, id, domain.ActionDelete, actor, func(t *lifecycleTx) error {
		if t.item.IsPublished() {
			return common.ErrDeletePublished
		}

		old, err := t.serialize()
		if err != nil {
			return err
		}
		if err := t.record(domain.ActionDelete, old, nil, nil); err != nil {
			return err
		}
		return t.contents.Delete(t.item)
	})
	return err
}

// SubmitForReview opens a pending review for a draft item
func (s *LifecycleService) SubmitForReview(ctx context.Context, contentType string, id uint64, actor domain.Actor) (*domain.Review, error) {
	var review *domain.Review
	_, err := s.run(ctx, contentType, id, domain.ActionSubmitForReview, actor, func(t *lifecycleTx) error {
		if t.item.GetStatus() != domain.StatusDraft {
			return common.ErrSubmitRequiresDraft
		}
		pending, err := t.reviews.FindPending(t.contents.Type(), t.item.GetID())
		if err != nil {
			return err
		}
		if pending != nil {
			return common.ErrReviewAlreadyPending
		}

		review = &domain.Review{
			ContentType: t.contents.Type(),
			ContentID:   t.item.GetID(),
			SubmittedBy: t.actor.UserID,
			Status:      domain.ReviewPending,
			SubmittedAt: s.clock(),
		}
		if err := t.reviews.Create(review); err != nil {
			return err
		}

		return t.mutate(domain.ActionSubmitForReview, map[string]interface{}{"review_id": review.ID}, func() {
			t.item.SetReviewStatus(domain.ReviewPending)
		})
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// ApproveReview closes the pending review as approved and publishes the item
func (s *LifecycleService) ApproveReview(ctx context.Context, contentType string, id uint64, comment string, actor domain.Actor) (*domain.Review, error) {
	var review *domain.Review
	_, err := s.run(ctx, contentType, id, domain.ActionReviewApproved, actor, func(t *lifecycleTx) error {
		pending, err := t.pendingReview()
		if err != nil {
			return err
		}
		if t.item.GetStatus() == domain.StatusArchived {
			return common.ErrArchived
		}

		now := s.clock()
		pending.Status = domain.ReviewApproved
		pending.ReviewComment = comment
		pending.ReviewedBy = t.actor.UserID
		pending.ReviewedAt = &now
		if err := t.reviews.Update(pending); err != nil {
			return err
		}
		review = pending

		metadata := map[string]interface{}{"review_id": pending.ID}
		if comment != "" {
			metadata["review_comment"] = comment
		}
		return t.mutate(domain.ActionReviewApproved, metadata, func() {
			t.item.SetReviewStatus(domain.ReviewApproved)
			if !t.item.IsPublished() {
				t.item.SetStatus(domain.StatusPublished)
				t.item.SetPublishedAt(&now)
			}
		})
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// RejectReview closes the pending review as rejected; status is left unchanged
func (s *LifecycleService) RejectReview(ctx context.Context, contentType string, id uint64, comment, reason string, actor domain.Actor) (*domain.Review, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, common.NewValidationError("rejection_reason", "is required")
	}

	var review *domain.Review
	_, err := s.run(ctx, contentType, id, domain.ActionReviewRejected, actor, func(t *lifecycleTx) error {
		pending, err := t.pendingReview()
		if err != nil {
			return err
		}

		now := s.clock()
		pending.Status = domain.ReviewRejected
		pending.ReviewComment = comment
		pending.RejectionReason = reason
		pending.ReviewedBy = t.actor.UserID
		pending.ReviewedAt = &now
		if err := t.reviews.Update(pending); err != nil {
			return err
		}
		review = pending

		metadata := map[string]interface{}{
			"review_id":        pending.ID,
			"rejection_reason": reason,
		}
		return t.mutate(domain.ActionReviewRejected, metadata, func() {
			t.item.SetReviewStatus(domain.ReviewRejected)
		})
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (t *lifecycleTx) pendingReview() (*domain.Review, error) {
	pending, err := t.reviews.FindPending(t.contents.Type(), t.item.GetID())
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, common.ErrPendingReviewNotFound
	}
	return pending, nil
}

// Restore overwrites the item with a stored snapshot, after snapshotting the current state
func (s *LifecycleService) Restore(ctx context.Context, contentType string, id, versionID uint64, actor domain.Actor) (domain.ContentItem, error) {
	return s.run(ctx, contentType, id, domain.ActionRestore, actor, func(t *lifecycleTx) error {
		old, err := t.serialize()
		if err != nil {
			return err
		}
		version, err := t.versions.Restore(t.contents, t.item, versionID, t.actor.UserID)
		if err != nil {
			return err
		}
		restored, err := t.serialize()
		if err != nil {
			return err
		}
		return t.record(domain.ActionRestore, old, restored, map[string]interface{}{
			"version_id":    version.ID,
			"version_label": version.Label,
		})
	})
}

// ListVersions lists snapshots of an item; they outlive the item itself
func (s *LifecycleService) ListVersions(ctx context.Context, contentType string, id uint64) ([]domain.ContentVersion, error) {
	if _, err := s.registry.Get(contentType); err != nil {
		return nil, err
	}
	return s.versions.ListVersions(ctx, contentType, id)
}

// GetVersion returns one snapshot of an item
func (s *LifecycleService) GetVersion(ctx context.Context, contentType string, id, versionID uint64) (*domain.ContentVersion, error) {
	if _, err := s.registry.Get(contentType); err != nil {
		return nil, err
	}
	return s.versions.GetVersion(ctx, contentType, id, versionID)
}

// CompareVersions diffs two snapshots, or a snapshot against the current state when to is zero
func (s *LifecycleService) CompareVersions(ctx context.Context, contentType string, id, from, to uint64) (map[string]diff.Change, error) {
	contents, err := s.registry.Get(contentType)
	if err != nil {
		return nil, err
	}

	var current map[string]interface{}
	if to == 0 {
		item, err := contents.WithTx(s.db.WithContext(ctx)).Find(id)
		if err != nil {
			return nil, err
		}
		if current, err = contents.Serialize(item); err != nil {
			return nil, err
		}
	}
	return s.versions.Compare(ctx, contentType, id, from, to, current)
}

// ListReviews returns the review history of an item
func (s *LifecycleService) ListReviews(ctx context.Context, contentType string, id uint64) ([]domain.Review, error) {
	if _, err := s.registry.Get(contentType); err != nil {
		return nil, err
	}
	return s.reviews.WithContext(ctx).FindByContent(contentType, id)
}

// History returns the audit entries of one item
func (s *LifecycleService) History(ctx context.Context, contentType string, id uint64, filter *domain.AuditFilter) ([]domain.AuditLog, int64, error) {
	contents, err := s.registry.Get(contentType)
	if err != nil {
		return nil, 0, err
	}
	filter.Area = contents.Type()
	filter.AuditableType = contents.Model()
	filter.AuditableID = id
	return s.audits.Query(ctx, filter)
}

// checkAttributes rejects empty payloads and attempts to write guarded attributes
func checkAttributes(attrs map[string]interface{}) error {
	if len(attrs) == 0 {
		return common.NewValidationError("attributes", "must not be empty")
	}
	fields := map[string]string{}
	for _, key := range guardedAttributes {
		if _, ok := attrs[key]; ok {
			fields[key] = "can only be changed through lifecycle operations"
		}
	}
	if len(fields) > 0 {
		return &common.ValidationError{Fields: fields}
	}
	return nil
}
