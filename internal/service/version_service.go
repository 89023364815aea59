package service

import (
	"context"
	"fmt"

	"github.com/lingoplatform/admin-backend/internal/domain"
	"github.com/lingoplatform/admin-backend/internal/repository"
	"github.com/lingoplatform/admin-backend/pkg/diff"
	"github.com/lingoplatform/admin-backend/pkg/serializer"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VersionService persists and restores full-state snapshots of content items
type VersionService struct {
	repo  *repository.VersionRepository
	clock Clock
}

// NewVersionService creates a new VersionService
func NewVersionService(repo *repository.VersionRepository, clock Clock) *VersionService {
	if clock == nil {
		clock = SystemClock
	}
	return &VersionService{repo: repo, clock: clock}
}

// WithTx returns a VersionService whose writes join tx
func (s *VersionService) WithTx(tx *gorm.DB) *VersionService {
	return &VersionService{repo: s.repo.WithTx(tx), clock: s.clock}
}

// Snapshot serializes the current state of item and stores it under label
func (s *VersionService) Snapshot(contents repository.ContentRepository, item domain.ContentItem, label string, actorID *uint64) (*domain.ContentVersion, error) {
	attrs, err := contents.Serialize(item)
	if err != nil {
		return nil, err
	}
	data, err := serializer.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	version := &domain.ContentVersion{
		ContentType: contents.Type(),
		ContentID:   item.GetID(),
		ContentData: datatypes.JSON(data),
		Label:       label,
		CreatedBy:   actorID,
		CreatedAt:   s.clock(),
	}
	if err := s.repo.Create(version); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}
	return version, nil
}

// ListVersions returns the snapshots of one item, most recent first
func (s *VersionService) ListVersions(ctx context.Context, contentType string, contentID uint64) ([]domain.ContentVersion, error) {
	return s.repo.WithContext(ctx).FindByContent(contentType, contentID)
}

// GetVersion returns one snapshot; ErrVersionNotFound if it belongs to another item
func (s *VersionService) GetVersion(ctx context.Context, contentType string, contentID, versionID uint64) (*domain.ContentVersion, error) {
	return s.repo.WithContext(ctx).FindForContent(contentType, contentID, versionID)
}

// Restore snapshots the current state (before_restore) and then overwrites item
// with the payload of versionID. Restoring may legitimately change status.
func (s *VersionService) Restore(contents repository.ContentRepository, item domain.ContentItem, versionID uint64, actorID *uint64) (*domain.ContentVersion, error) {
	version, err := s.repo.FindForContent(contents.Type(), item.GetID(), versionID)
	if err != nil {
		return nil, err
	}
	payload, err := Payload(version)
	if err != nil {
		return nil, err
	}

	if _, err := s.Snapshot(contents, item, domain.LabelBeforeRestore, actorID); err != nil {
		return nil, err
	}
	if err := contents.Fill(item, payload); err != nil {
		return nil, err
	}
	if err := contents.Save(item); err != nil {
		return nil, fmt.Errorf("failed to save restored content: %w", err)
	}
	return version, nil
}

// Compare diffs two snapshots of the same item. A zero toVersionID compares
// against current, the item's present state.
func (s *VersionService) Compare(ctx context.Context, contentType string, contentID, fromVersionID, toVersionID uint64, current map[string]interface{}) (map[string]diff.Change, error) {
	repo := s.repo.WithContext(ctx)

	from, err := repo.FindForContent(contentType, contentID, fromVersionID)
	if err != nil {
		return nil, err
	}
	fromAttrs, err := Payload(from)
	if err != nil {
		return nil, err
	}

	toAttrs := current
	if toVersionID != 0 {
		to, err := repo.FindForContent(contentType, contentID, toVersionID)
		if err != nil {
			return nil, err
		}
		if toAttrs, err = Payload(to); err != nil {
			return nil, err
		}
	}

	return diff.Fields(fromAttrs, toAttrs), nil
}

// Payload decodes the attribute map stored in a snapshot
func Payload(version *domain.ContentVersion) (map[string]interface{}, error) {
	attrs := map[string]interface{}{}
	if len(version.ContentData) == 0 {
		return attrs, nil
	}
	if err := serializer.Unmarshal(version.ContentData, &attrs); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %d: %w", version.ID, err)
	}
	return attrs, nil
}
