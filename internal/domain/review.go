package domain

import "time"

// Review 검수 요청. 콘텐츠당 pending 상태는 최대 하나
type Review struct {
	ID              uint64       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContentType     string       `gorm:"column:content_type;type:varchar(50);index:idx_review_content" json:"content_type"`
	ContentID       uint64       `gorm:"column:content_id;index:idx_review_content" json:"content_id"`
	SubmittedBy     *uint64      `gorm:"column:submitted_by" json:"submitted_by"`
	Status          ReviewStatus `gorm:"column:status;type:varchar(20);index" json:"status"`
	ReviewComment   string       `gorm:"column:review_comment;type:text" json:"review_comment"`
	RejectionReason string       `gorm:"column:rejection_reason;type:text" json:"rejection_reason"`
	ReviewedBy      *uint64      `gorm:"column:reviewed_by" json:"reviewed_by"`
	SubmittedAt     time.Time    `gorm:"column:submitted_at" json:"submitted_at"`
	ReviewedAt      *time.Time   `gorm:"column:reviewed_at" json:"reviewed_at"`
}

func (Review) TableName() string { return "reviews" }
