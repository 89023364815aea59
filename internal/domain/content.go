package domain

import "time"

// ContentStatus 콘텐츠 게시 상태
type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusPublished ContentStatus = "published"
	StatusArchived  ContentStatus = "archived"
)

// ReviewStatus 콘텐츠 검수 상태
type ReviewStatus string

const (
	ReviewNone     ReviewStatus = "none"
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ContentItem is the capability every lifecycle-managed model exposes.
// Serialization and persistence are provided by the matching ContentRepository.
type ContentItem interface {
	GetID() uint64
	GetStatus() ContentStatus
	SetStatus(ContentStatus)
	GetReviewStatus() ReviewStatus
	SetReviewStatus(ReviewStatus)
	SetPublishedAt(*time.Time)
	IsPublished() bool
}

// ContentBase holds the columns shared by every content table
type ContentBase struct {
	ID           uint64        `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Status       ContentStatus `gorm:"column:status;type:varchar(20);default:'draft';index" json:"status"`
	ReviewStatus ReviewStatus  `gorm:"column:review_status;type:varchar(20);default:'none'" json:"review_status"`
	PublishedAt  *time.Time    `gorm:"column:published_at" json:"published_at"`
	CreatedAt    time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

func (b *ContentBase) GetID() uint64                  { return b.ID }
func (b *ContentBase) GetStatus() ContentStatus       { return b.Status }
func (b *ContentBase) SetStatus(s ContentStatus)      { b.Status = s }
func (b *ContentBase) GetReviewStatus() ReviewStatus  { return b.ReviewStatus }
func (b *ContentBase) SetReviewStatus(s ReviewStatus) { b.ReviewStatus = s }
func (b *ContentBase) SetPublishedAt(t *time.Time)    { b.PublishedAt = t }

// IsPublished returns true if the content item is in published status
func (b *ContentBase) IsPublished() bool {
	return b.Status == StatusPublished
}
