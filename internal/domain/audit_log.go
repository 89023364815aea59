package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions
const (
	ActionCreate          = "create"
	ActionUpdate          = "update"
	ActionDelete          = "delete"
	ActionPublish         = "publish"
	ActionUnpublish       = "unpublish"
	ActionStatusUpdate    = "status_update"
	ActionRestore         = "restore"
	ActionSubmitForReview = "submit_for_review"
	ActionReviewApproved  = "review_approved"
	ActionReviewRejected  = "review_rejected"
)

// Audit outcome
const (
	AuditSuccess = "success"
	AuditFailure = "failure"
	AuditError   = "error"
)

// AuditLog is one immutable record of an action on a content item.
// UserID nil means the action was performed by the system.
type AuditLog struct {
	ID            uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID        *uint64        `gorm:"column:user_id;index" json:"user_id"`
	Action        string         `gorm:"column:action;type:varchar(50);index" json:"action"`
	Area          string         `gorm:"column:area;type:varchar(50);index" json:"area"`
	AuditableType string         `gorm:"column:auditable_type;type:varchar(100);index:idx_audit_target" json:"auditable_type"`
	AuditableID   uint64         `gorm:"column:auditable_id;index:idx_audit_target" json:"auditable_id"`
	Status        string         `gorm:"column:status;type:varchar(20);index" json:"status"`
	Changes       datatypes.JSON `gorm:"column:changes" json:"changes"`
	IPAddress     string         `gorm:"column:ip_address;type:varchar(45)" json:"ip_address"`
	UserAgent     string         `gorm:"column:user_agent;type:varchar(512)" json:"user_agent"`
	PerformedAt   time.Time      `gorm:"column:performed_at;index" json:"performed_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// AuditFilter audit log query parameters
type AuditFilter struct {
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	Action        string `form:"action"`
	Area          string `form:"area"`
	UserID        string `form:"user_id"`
	Status        string `form:"status" binding:"omitempty,oneof=success failure error"`
	AuditableType string `form:"auditable_type"`
	AuditableID   uint64 `form:"auditable_id"`
	SortBy        string `form:"sort_by" binding:"omitempty,oneof=performed_at action area status"`
	SortOrder     string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PerPage       int    `form:"per_page" binding:"omitempty,min=1"`
}

// AuditSummary aggregate counts for reporting consumers
type AuditSummary struct {
	Total    int64            `json:"total"`
	ByAction map[string]int64 `json:"by_action"`
	ByStatus map[string]int64 `json:"by_status"`
	ByArea   map[string]int64 `json:"by_area"`
}
