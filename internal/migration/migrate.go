package migration

import (
	"fmt"

	"github.com/lingoplatform/admin-backend/internal/domain"
	"github.com/lingoplatform/admin-backend/internal/repository"
	"gorm.io/gorm"
)

// EngineModels are the lifecycle engine tables
func EngineModels() []interface{} {
	return []interface{}{
		&domain.ContentVersion{},
		&domain.AuditLog{},
		&domain.Review{},
	}
}

// Run executes AutoMigrate for the engine tables and every content table
func Run(db *gorm.DB) error {
	// 1. 엔진 테이블 (content_versions, audit_logs, reviews)
	if err := db.AutoMigrate(EngineModels()...); err != nil {
		return fmt.Errorf("engine tables: %w", err)
	}

	// 2. 콘텐츠 테이블
	if err := db.AutoMigrate(repository.ContentModels()...); err != nil {
		return fmt.Errorf("content tables: %w", err)
	}

	return nil
}

// TableCount number of tables Run manages
func TableCount() int {
	return len(EngineModels()) + len(repository.ContentModels())
}
