package repository

import (
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryRepositoryImpl implements CategoryRepository
type CategoryRepositoryImpl struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) models.CategoryRepository {
	return &CategoryRepositoryImpl{db: db}
}

func (r *CategoryRepositoryImpl) ListByServiceLine(line models.ServiceLine) ([]models.FeedbackCategory, error) {
	var categories []models.FeedbackCategory
	err := r.db.Where("service_line = ?", line).
		Order("sort_order, slug").
		Find(&categories).Error
	return categories, err
}

func (r *CategoryRepositoryImpl) GetBySlug(line models.ServiceLine, slug string) (*models.FeedbackCategory, error) {
	var category models.FeedbackCategory
	err := r.db.Where("service_line = ? AND slug = ?", line, slug).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Upsert inserts the category or updates names, flag and order of the
// existing (service_line, slug) row.
func (r *CategoryRepositoryImpl) Upsert(category *models.FeedbackCategory) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "service_line"}, {Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"names", "is_active", "sort_order", "updated_at"}),
	}).Create(category).Error
}

// FeedbackRepositoryImpl implements FeedbackRepository
type FeedbackRepositoryImpl struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) models.FeedbackRepository {
	return &FeedbackRepositoryImpl{db: db}
}

func (r *FeedbackRepositoryImpl) Create(submission *models.FeedbackSubmission) error {
	return r.db.Create(submission).Error
}

func (r *FeedbackRepositoryImpl) GetByID(id string) (*models.FeedbackSubmission, error) {
	var submission models.FeedbackSubmission
	err := r.db.Where("id = ?", id).First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	Category models.CategoryRepository
	Feedback models.FeedbackRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		Category: NewCategoryRepository(db),
		Feedback: NewFeedbackRepository(db),
	}
}
