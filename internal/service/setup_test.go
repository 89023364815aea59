package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lingoplatform/admin-backend/internal/domain"
	"github.com/lingoplatform/admin-backend/internal/migration"
	"github.com/lingoplatform/admin-backend/internal/repository"
	"github.com/lingoplatform/admin-backend/pkg/serializer"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var errInjected = errors.New("injected storage failure")

// testClock is a manually advanced clock
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	db        *gorm.DB
	clock     *testClock
	registry  *repository.Registry
	versions  *VersionService
	audits    *AuditService
	lifecycle *LifecycleService
	actor     domain.Actor
	ctx       context.Context

	failAuditWrites bool
}

func setupTestDB(t *testing.T, clock *testClock) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: clock.Now,
	})
	require.NoError(t, err)

	// :memory: is per connection
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migration.Run(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	db := setupTestDB(t, clock)

	env := &testEnv{
		db:       db,
		clock:    clock,
		registry: repository.NewDefaultRegistry(db),
		ctx:      context.Background(),
	}
	adminID := uint64(7)
	env.actor = domain.Actor{UserID: &adminID, IPAddress: "10.0.0.7", UserAgent: "admin-ui/1.0"}

	env.versions = NewVersionService(repository.NewVersionRepository(db), clock.Now)
	env.audits = NewAuditService(repository.NewAuditLogRepository(db), nil, clock.Now, DefaultAuditConfig())
	env.lifecycle = NewLifecycleService(db, env.registry, env.versions, env.audits, repository.NewReviewRepository(db), clock.Now)

	err := db.Callback().Create().Before("gorm:create").Register("test:fail_audit_writes", func(tx *gorm.DB) {
		if env.failAuditWrites && tx.Statement.Table == "audit_logs" {
			_ = tx.AddError(errInjected)
		}
	})
	require.NoError(t, err)
	return env
}

func (e *testEnv) createLesson(t *testing.T, title string) domain.ContentItem {
	t.Helper()
	item, err := e.lifecycle.Create(e.ctx, "lessons", map[string]interface{}{
		"title":   title,
		"summary": "greetings and introductions",
	}, e.actor)
	require.NoError(t, err)
	return item
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func (e *testEnv) versionCount(t *testing.T, contentType string, id uint64) int64 {
	return e.count(t, &domain.ContentVersion{}, "content_type = ? AND content_id = ?", contentType, id)
}

func (e *testEnv) auditCount(t *testing.T, model string, id uint64) int64 {
	return e.count(t, &domain.AuditLog{}, "auditable_type = ? AND auditable_id = ?", model, id)
}

// auditActions lists the actions recorded for an item, oldest first
func (e *testEnv) auditActions(t *testing.T, model string, id uint64) []string {
	t.Helper()
	var entries []domain.AuditLog
	require.NoError(t, e.db.Where("auditable_type = ? AND auditable_id = ?", model, id).Order("id ASC").Find(&entries).Error)
	actions := make([]string, 0, len(entries))
	for _, entry := range entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

func (e *testEnv) lastAudit(t *testing.T, model string, id uint64) domain.AuditLog {
	t.Helper()
	var entry domain.AuditLog
	require.NoError(t, e.db.Where("auditable_type = ? AND auditable_id = ?", model, id).Order("id DESC").First(&entry).Error)
	return entry
}

func (e *testEnv) reload(t *testing.T, contentType string, id uint64) domain.ContentItem {
	t.Helper()
	item, err := e.lifecycle.Get(e.ctx, contentType, id)
	require.NoError(t, err)
	return item
}

func decodeChanges(t *testing.T, entry domain.AuditLog) map[string]interface{} {
	t.Helper()
	var changes map[string]interface{}
	require.NoError(t, serializer.Unmarshal(entry.Changes, &changes))
	return changes
}
