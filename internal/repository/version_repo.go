package repository

import (
	"context"
	"errors"

	"github.com/lingoplatform/admin-backend/internal/common"
	"github.com/lingoplatform/admin-backend/internal/domain"
	"gorm.io/gorm"
)

// VersionRepository content snapshot data access. Snapshots are append-only:
// there is deliberately no update or delete.
type VersionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a new VersionRepository
func NewVersionRepository(db *gorm.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// WithContext returns a new VersionRepository whose queries use ctx
func (r *VersionRepository) WithContext(ctx context.Context) *VersionRepository {
	return &VersionRepository{db: r.db.WithContext(ctx)}
}

// WithTx returns a new VersionRepository with the given transaction
func (r *VersionRepository) WithTx(tx *gorm.DB) *VersionRepository {
	return &VersionRepository{db: tx}
}

func (r *VersionRepository) Create(version *domain.ContentVersion) error {
	return r.db.Create(version).Error
}

// FindByContent returns every snapshot of one item, most recent first
func (r *VersionRepository) FindByContent(contentType string, contentID uint64) ([]domain.ContentVersion, error) {
	var versions []domain.ContentVersion
	err := r.db.Where("content_type = ? AND content_id = ?", contentType, contentID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&versions).Error
	return versions, err
}

// FindForContent returns the snapshot only if it belongs to (contentType, contentID)
func (r *VersionRepository) FindForContent(contentType string, contentID, versionID uint64) (*domain.ContentVersion, error) {
	var version domain.ContentVersion
	err := r.db.Where("id = ? AND content_type = ? AND content_id = ?", versionID, contentType, contentID).
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrVersionNotFound
		}
		return nil, err
	}
	return &version, nil
}
