package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Snapshot labels
const (
	LabelBeforePublish   = "before_publish"
	LabelBeforeUnpublish = "before_unpublish"
	LabelBeforeArchive   = "before_archive"
	LabelBeforeRestore   = "before_restore"
	LabelManual          = "manual"
)

// ContentVersion is an append-only full snapshot of a content item
type ContentVersion struct {
	ID          uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContentType string         `gorm:"column:content_type;type:varchar(50);index:idx_version_content" json:"content_type"`
	ContentID   uint64         `gorm:"column:content_id;index:idx_version_content" json:"content_id"`
	ContentData datatypes.JSON `gorm:"column:content_data" json:"content_data"`
	Label       string         `gorm:"column:label;type:varchar(30)" json:"label"`
	CreatedBy   *uint64        `gorm:"column:created_by" json:"created_by"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (ContentVersion) TableName() string { return "content_versions" }
