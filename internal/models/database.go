package models

// GORM models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// LocalizedNames maps language codes to display names, stored as JSON.
type LocalizedNames map[string]string

func (n LocalizedNames) Value() (driver.Value, error) {
	if len(n) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(map[string]string(n))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (n *LocalizedNames) Scan(value interface{}) error {
	if value == nil {
		*n = LocalizedNames{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into LocalizedNames", value)
	}

	decoded := map[string]string{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*n = decoded
	return nil
}

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FeedbackCategory is one selectable category of a service line.
type FeedbackCategory struct {
	BaseModel
	ServiceLine ServiceLine    `json:"service_line" gorm:"not null;uniqueIndex:idx_category_line_slug"`
	Slug        string         `json:"slug" gorm:"not null;uniqueIndex:idx_category_line_slug"`
	Names       LocalizedNames `json:"names" gorm:"type:jsonb"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	SortOrder   int            `json:"sort_order" gorm:"default:0"`
}

// FeedbackSubmission is a stored piece of feedback. ID is the confirmation
// identifier returned to the submitter.
type FeedbackSubmission struct {
	ID           string      `json:"id" gorm:"primaryKey;size:36"`
	ServiceLine  ServiceLine `json:"service_line" gorm:"not null;index"`
	CategorySlug string      `json:"category_slug" gorm:"not null;index"`
	Rating       int         `json:"rating" gorm:"not null;check:rating BETWEEN 1 AND 5"`
	Comment      string      `json:"comment" gorm:"size:2000"`
	IsAnonymous  bool        `json:"is_anonymous" gorm:"not null;default:true"`
	UserID       *string     `json:"user_id,omitempty" gorm:"size:64"`
	ClientIP     string      `json:"-" gorm:"size:64"`
	UserAgent    string      `json:"-" gorm:"size:400"`
	RequestID    string      `json:"request_id" gorm:"size:32"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Database interfaces for repository pattern
type CategoryRepository interface {
	ListByServiceLine(line ServiceLine) ([]FeedbackCategory, error)
	GetBySlug(line ServiceLine, slug string) (*FeedbackCategory, error)
	Upsert(category *FeedbackCategory) error
}

type FeedbackRepository interface {
	Create(submission *FeedbackSubmission) error
	GetByID(id string) (*FeedbackSubmission, error)
}

// TableName methods for custom table names
func (FeedbackCategory) TableName() string   { return "feedback_categories" }
func (FeedbackSubmission) TableName() string { return "feedback_submissions" }

// ToDto converts a stored category to its wire form.
func (c FeedbackCategory) ToDto() CategoryDto {
	active := c.IsActive
	names := make(map[string]string, len(c.Names))
	for lang, name := range c.Names {
		names[lang] = name
	}
	return CategoryDto{
		Slug:      c.Slug,
		Active:    &active,
		Names:     names,
		SortOrder: c.SortOrder,
	}
}

// Model validation methods
func (c *FeedbackCategory) Validate() error {
	if !c.ServiceLine.Valid() {
		return fmt.Errorf("invalid service line: %q", c.ServiceLine)
	}
	if strings.TrimSpace(c.Slug) == "" {
		return errors.New("category slug is required")
	}
	return nil
}

func (s *FeedbackSubmission) Validate() error {
	if s.ID == "" {
		return errors.New("submission ID is required")
	}
	if !s.ServiceLine.Valid() {
		return fmt.Errorf("invalid service line: %q", s.ServiceLine)
	}
	if s.CategorySlug == "" {
		return errors.New("category slug is required")
	}
	if s.Rating < 1 || s.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", s.Rating)
	}
	return nil
}

// GORM hooks
func (c *FeedbackCategory) BeforeSave(tx *gorm.DB) error {
	return c.Validate()
}

func (s *FeedbackSubmission) BeforeCreate(tx *gorm.DB) error {
	return s.Validate()
}
