package repository

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lingoplatform/admin-backend/internal/common"
	"github.com/lingoplatform/admin-backend/internal/domain"
	"github.com/lingoplatform/admin-backend/pkg/serializer"
	"gorm.io/gorm"
)

// volatileAttributes are bookkeeping columns left out of snapshots and diffs
var volatileAttributes = []string{"updated_at"}

// protectedAttributes may not be overwritten by Fill
var protectedAttributes = []string{"id"}

// ContentRepository is the per-type persistence capability the lifecycle engine drives
type ContentRepository interface {
	// Type returns the content-type tag, e.g. "lessons"
	Type() string
	// Model returns the auditable model name, e.g. "Lesson"
	Model() string
	New() domain.ContentItem
	Find(id uint64) (domain.ContentItem, error)
	Create(item domain.ContentItem) error
	Save(item domain.ContentItem) error
	Delete(item domain.ContentItem) error
	Serialize(item domain.ContentItem) (map[string]interface{}, error)
	Fill(item domain.ContentItem, attrs map[string]interface{}) error
	Validate(item domain.ContentItem) error
	WithTx(tx *gorm.DB) ContentRepository
}

// GormContentRepository implements ContentRepository for any gorm model embedding domain.ContentBase
type GormContentRepository[T any, PT interface {
	*T
	domain.ContentItem
}] struct {
	db    *gorm.DB
	tag   string
	model string
}

// NewGormContentRepository creates a repository for the model T registered under tag
func NewGormContentRepository[T any, PT interface {
	*T
	domain.ContentItem
}](db *gorm.DB, tag, model string) *GormContentRepository[T, PT] {
	return &GormContentRepository[T, PT]{db: db, tag: tag, model: model}
}

func (r *GormContentRepository[T, PT]) Type() string  { return r.tag }
func (r *GormContentRepository[T, PT]) Model() string { return r.model }

// WithTx returns a repository bound to the given transaction
func (r *GormContentRepository[T, PT]) WithTx(tx *gorm.DB) ContentRepository {
	return &GormContentRepository[T, PT]{db: tx, tag: r.tag, model: r.model}
}

func (r *GormContentRepository[T, PT]) New() domain.ContentItem {
	return PT(new(T))
}

func (r *GormContentRepository[T, PT]) Find(id uint64) (domain.ContentItem, error) {
	item := PT(new(T))
	if err := r.db.First(item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrContentNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *GormContentRepository[T, PT]) Create(item domain.ContentItem) error {
	typed, err := r.cast(item)
	if err != nil {
		return err
	}
	return r.db.Create(typed).Error
}

func (r *GormContentRepository[T, PT]) Save(item domain.ContentItem) error {
	typed, err := r.cast(item)
	if err != nil {
		return err
	}
	return r.db.Save(typed).Error
}

func (r *GormContentRepository[T, PT]) Delete(item domain.ContentItem) error {
	typed, err := r.cast(item)
	if err != nil {
		return err
	}
	return r.db.Delete(typed).Error
}

// Serialize returns the full attribute map of item without volatile columns
func (r *GormContentRepository[T, PT]) Serialize(item domain.ContentItem) (map[string]interface{}, error) {
	attrs, err := serializer.ToMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", r.tag, err)
	}
	for _, key := range volatileAttributes {
		delete(attrs, key)
	}
	return attrs, nil
}

// Fill overwrites the attributes of item present in attrs. The primary key is kept.
func (r *GormContentRepository[T, PT]) Fill(item domain.ContentItem, attrs map[string]interface{}) error {
	typed, err := r.cast(item)
	if err != nil {
		return err
	}

	clean := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		clean[k] = v
	}
	for _, key := range protectedAttributes {
		delete(clean, key)
	}
	for _, key := range volatileAttributes {
		delete(clean, key)
	}

	if err := serializer.FromMap(clean, typed); err != nil {
		return common.NewValidationError("attributes", err.Error())
	}
	return nil
}

// Validate runs the model's validate tags
func (r *GormContentRepository[T, PT]) Validate(item domain.ContentItem) error {
	return common.FromValidator(common.Validate.Struct(item))
}

func (r *GormContentRepository[T, PT]) cast(item domain.ContentItem) (PT, error) {
	typed, ok := item.(PT)
	if !ok {
		return nil, fmt.Errorf("content item %T does not belong to %s", item, r.tag)
	}
	return typed, nil
}

// Registry maps content-type tags to their repositories
type Registry struct {
	repos map[string]ContentRepository
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{repos: make(map[string]ContentRepository)}
}

// Register adds repo under its type tag, replacing any previous entry
func (r *Registry) Register(repo ContentRepository) {
	r.repos[repo.Type()] = repo
}

// Get returns the repository registered for tag
func (r *Registry) Get(tag string) (ContentRepository, error) {
	repo, ok := r.repos[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrContentTypeNotFound, tag)
	}
	return repo, nil
}

// Types returns the registered tags in sorted order
func (r *Registry) Types() []string {
	tags := make([]string, 0, len(r.repos))
	for tag := range r.repos {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ContentModels lists the gorm models of the default content types, for migrations
func ContentModels() []interface{} {
	return []interface{}{
		&domain.LearningPath{},
		&domain.Unit{},
		&domain.Lesson{},
		&domain.Section{},
		&domain.Exercise{},
		&domain.Quiz{},
		&domain.Vocabulary{},
		&domain.GuideEntry{},
	}
}

// NewDefaultRegistry registers every learning content type of the platform
func NewDefaultRegistry(db *gorm.DB) *Registry {
	reg := NewRegistry()
	reg.Register(NewGormContentRepository[domain.LearningPath](db, "learning-paths", "LearningPath"))
	reg.Register(NewGormContentRepository[domain.Unit](db, "units", "Unit"))
	reg.Register(NewGormContentRepository[domain.Lesson](db, "lessons", "Lesson"))
	reg.Register(NewGormContentRepository[domain.Section](db, "sections", "Section"))
	reg.Register(NewGormContentRepository[domain.Exercise](db, "exercises", "Exercise"))
	reg.Register(NewGormContentRepository[domain.Quiz](db, "quizzes", "Quiz"))
	reg.Register(NewGormContentRepository[domain.Vocabulary](db, "vocabularies", "Vocabulary"))
	reg.Register(NewGormContentRepository[domain.GuideEntry](db, "guide-entries", "GuideEntry"))
	return reg
}
