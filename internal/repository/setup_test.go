package repository

import (
	"testing"

	"github.com/lingoplatform/admin-backend/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	models := append([]interface{}{&domain.ContentVersion{}, &domain.AuditLog{}, &domain.Review{}}, ContentModels()...)
	require.NoError(t, db.AutoMigrate(models...))
	return db
}
