package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lingoplatform/admin-backend/internal/common"
	"github.com/lingoplatform/admin-backend/internal/domain"
	"gorm.io/gorm"
)

// AuditQuery is a resolved audit log filter. To is exclusive.
type AuditQuery struct {
	From          *time.Time
	To            *time.Time
	Action        string
	Area          string
	Status        string
	UserID        *uint64
	AuditableType string
	AuditableID   uint64
	SortBy        string
	SortOrder     string
	Offset        int
	Limit         int
}

// AuditLogRepository audit log data access. Entries are write-once:
// the repository has no update or delete.
type AuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// WithContext returns a new AuditLogRepository whose queries use ctx
func (r *AuditLogRepository) WithContext(ctx context.Context) *AuditLogRepository {
	return &AuditLogRepository{db: r.db.WithContext(ctx)}
}

// WithTx returns a new AuditLogRepository with the given transaction
func (r *AuditLogRepository) WithTx(tx *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: tx}
}

func (r *AuditLogRepository) Create(entry *domain.AuditLog) error {
	return r.db.Create(entry).Error
}

func (r *AuditLogRepository) FindByID(id uint64) (*domain.AuditLog, error) {
	var entry domain.AuditLog
	if err := r.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrAuditLogNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// List returns one page of entries and the total match count
func (r *AuditLogRepository) List(q AuditQuery) ([]domain.AuditLog, int64, error) {
	var total int64
	if err := r.filtered(q).Model(&domain.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []domain.AuditLog
	query := r.ordered(r.filtered(q), q)
	if q.Limit > 0 {
		query = query.Offset(q.Offset).Limit(q.Limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// FindAll returns every matching entry in the requested order
func (r *AuditLogRepository) FindAll(q AuditQuery) ([]domain.AuditLog, error) {
	var entries []domain.AuditLog
	err := r.ordered(r.filtered(q), q).Find(&entries).Error
	return entries, err
}

// CountBy groups matching entries by column (action, status or area)
func (r *AuditLogRepository) CountBy(q AuditQuery, column string) (map[string]int64, error) {
	switch column {
	case "action", "status", "area":
	default:
		return nil, common.NewValidationError("group_by", "unsupported column")
	}

	var rows []struct {
		Key   string
		Count int64
	}
	err := r.filtered(q).Model(&domain.AuditLog{}).
		Select(column + " AS `key`, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

func (r *AuditLogRepository) filtered(q AuditQuery) *gorm.DB {
	query := r.db.Model(&domain.AuditLog{})
	if q.From != nil {
		query = query.Where("performed_at >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where("performed_at < ?", *q.To)
	}
	if q.Action != "" {
		query = query.Where("action = ?", q.Action)
	}
	if q.Area != "" {
		query = query.Where("area = ?", q.Area)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.UserID != nil {
		query = query.Where("user_id = ?", *q.UserID)
	}
	if q.AuditableType != "" {
		query = query.Where("auditable_type = ?", q.AuditableType)
	}
	if q.AuditableID != 0 {
		query = query.Where("auditable_id = ?", q.AuditableID)
	}
	return query
}

// ordered applies a whitelisted sort with id as tie-breaker
func (r *AuditLogRepository) ordered(query *gorm.DB, q AuditQuery) *gorm.DB {
	column := "performed_at"
	switch q.SortBy {
	case "action", "area", "status":
		column = q.SortBy
	}
	direction := "DESC"
	if q.SortOrder == "asc" {
		direction = "ASC"
	}
	return query.Order(column + " " + direction).Order("id " + direction)
}
