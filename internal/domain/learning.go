package domain

import "gorm.io/datatypes"

// LearningPath 학습 경로 (최상위 커리큘럼)
type LearningPath struct {
	ContentBase
	Title          string `gorm:"column:title;type:varchar(255);not null" json:"title" validate:"required,max=255"`
	Description    string `gorm:"column:description;type:text" json:"description"`
	SourceLanguage string `gorm:"column:source_language;type:varchar(10)" json:"source_language" validate:"required,max=10"`
	TargetLanguage string `gorm:"column:target_language;type:varchar(10)" json:"target_language" validate:"required,max=10"`
	Level          string `gorm:"column:level;type:varchar(10)" json:"level" validate:"omitempty,oneof=A1 A2 B1 B2 C1 C2"`
}

func (LearningPath) TableName() string { return "learning_paths" }

// Unit 학습 경로 하위 단원
type Unit struct {
	ContentBase
	LearningPathID uint64 `gorm:"column:learning_path_id;index" json:"learning_path_id"`
	Title          string `gorm:"column:title;type:varchar(255);not null" json:"title" validate:"required,max=255"`
	Description    string `gorm:"column:description;type:text" json:"description"`
	OrderNum       int    `gorm:"column:order_num;default:0" json:"order_num" validate:"min=0"`
}

func (Unit) TableName() string { return "units" }

// Lesson 단원 하위 레슨
type Lesson struct {
	ContentBase
	UnitID           uint64 `gorm:"column:unit_id;index" json:"unit_id"`
	Title            string `gorm:"column:title;type:varchar(255);not null" json:"title" validate:"required,max=255"`
	Summary          string `gorm:"column:summary;type:text" json:"summary"`
	EstimatedMinutes int    `gorm:"column:estimated_minutes;default:0" json:"estimated_minutes" validate:"min=0"`
	OrderNum         int    `gorm:"column:order_num;default:0" json:"order_num" validate:"min=0"`
}

func (Lesson) TableName() string { return "lessons" }

// Section 레슨 본문 블록
type Section struct {
	ContentBase
	LessonID uint64 `gorm:"column:lesson_id;index" json:"lesson_id"`
	Title    string `gorm:"column:title;type:varchar(255)" json:"title" validate:"max=255"`
	Body     string `gorm:"column:body;type:mediumtext" json:"body"`
	OrderNum int    `gorm:"column:order_num;default:0" json:"order_num" validate:"min=0"`
}

func (Section) TableName() string { return "sections" }

// Exercise 연습 문제
type Exercise struct {
	ContentBase
	LessonID uint64         `gorm:"column:lesson_id;index" json:"lesson_id"`
	Kind     string         `gorm:"column:kind;type:varchar(30)" json:"kind" validate:"required,oneof=multiple_choice fill_blank translate listen speak match"`
	Prompt   string         `gorm:"column:prompt;type:text" json:"prompt" validate:"required"`
	Options  datatypes.JSON `gorm:"column:options" json:"options"`
	Answer   datatypes.JSON `gorm:"column:answer" json:"answer"`
	OrderNum int            `gorm:"column:order_num;default:0" json:"order_num" validate:"min=0"`
}

func (Exercise) TableName() string { return "exercises" }

// Quiz 단원 평가
type Quiz struct {
	ContentBase
	UnitID           uint64         `gorm:"column:unit_id;index" json:"unit_id"`
	Title            string         `gorm:"column:title;type:varchar(255);not null" json:"title" validate:"required,max=255"`
	PassingScore     int            `gorm:"column:passing_score;default:70" json:"passing_score" validate:"min=0,max=100"`
	TimeLimitSeconds int            `gorm:"column:time_limit_seconds;default:0" json:"time_limit_seconds" validate:"min=0"`
	Questions        datatypes.JSON `gorm:"column:questions" json:"questions"`
}

func (Quiz) TableName() string { return "quizzes" }

// Vocabulary 단어장 항목
type Vocabulary struct {
	ContentBase
	Word          string         `gorm:"column:word;type:varchar(255);not null;index" json:"word" validate:"required,max=255"`
	Translation   string         `gorm:"column:translation;type:varchar(255)" json:"translation" validate:"required,max=255"`
	Pronunciation string         `gorm:"column:pronunciation;type:varchar(255)" json:"pronunciation"`
	PartOfSpeech  string         `gorm:"column:part_of_speech;type:varchar(30)" json:"part_of_speech"`
	Language      string         `gorm:"column:language;type:varchar(10)" json:"language" validate:"required,max=10"`
	Examples      datatypes.JSON `gorm:"column:examples" json:"examples"`
}

func (Vocabulary) TableName() string { return "vocabularies" }

// GuideEntry 문법/문화 가이드 문서
type GuideEntry struct {
	ContentBase
	Title    string         `gorm:"column:title;type:varchar(255);not null" json:"title" validate:"required,max=255"`
	Slug     string         `gorm:"column:slug;type:varchar(255);index" json:"slug" validate:"required,max=255"`
	Body     string         `gorm:"column:body;type:mediumtext" json:"body"`
	Category string         `gorm:"column:category;type:varchar(50)" json:"category"`
	Tags     datatypes.JSON `gorm:"column:tags" json:"tags"`
}

func (GuideEntry) TableName() string { return "guide_entries" }
