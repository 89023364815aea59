package repository

import (
	"context"
	"errors"

	"github.com/lingoplatform/admin-backend/internal/domain"
	"gorm.io/gorm"
)

// ReviewRepository 검수 요청 저장소
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 생성자
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// WithContext returns a new ReviewRepository whose queries use ctx
func (r *ReviewRepository) WithContext(ctx context.Context) *ReviewRepository {
	return &ReviewRepository{db: r.db.WithContext(ctx)}
}

// WithTx returns a new ReviewRepository with the given transaction
func (r *ReviewRepository) WithTx(tx *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: tx}
}

// Create 새 검수 요청 생성
func (r *ReviewRepository) Create(review *domain.Review) error {
	return r.db.Create(review).Error
}

// Update 검수 결과 갱신
func (r *ReviewRepository) Update(review *domain.Review) error {
	return r.db.Save(review).Error
}

// FindPending returns the pending review of an item, or nil when there is none
func (r *ReviewRepository) FindPending(contentType string, contentID uint64) (*domain.Review, error) {
	var review domain.Review
	err := r.db.Where("content_type = ? AND content_id = ? AND status = ?", contentType, contentID, domain.ReviewPending).
		Order("id DESC").
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// FindByContent 콘텐츠의 검수 이력 (최신순)
func (r *ReviewRepository) FindByContent(contentType string, contentID uint64) ([]domain.Review, error) {
	var reviews []domain.Review
	err := r.db.Where("content_type = ? AND content_id = ?", contentType, contentID).
		Order("submitted_at DESC").
		Order("id DESC").
		Find(&reviews).Error
	return reviews, err
}
