package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/DurgaPrasad-54/helpline104-feedback/internal/database"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/models"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/repository"
	"github.com/DurgaPrasad-54/helpline104-feedback/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const categoryCacheTTL = 5 * time.Minute

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnknownCategory = errors.New("unknown category")
	ErrNotFound        = errors.New("not found")
)

// ValidationError carries the user-facing reason a submission was refused.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// CategoryCache is the part of database.Cache the service needs.
type CategoryCache interface {
	GetCachedCategories(ctx context.Context, line models.ServiceLine) ([]models.CategoryDto, error)
	CacheCategories(ctx context.Context, line models.ServiceLine, categories []models.CategoryDto, expiration time.Duration) error
	InvalidateCategories(ctx context.Context, lines ...models.ServiceLine) error
}

// RequestMeta describes where a submission came from.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	RequestID string
}

type FeedbackService struct {
	repoManager *repository.RepositoryManager
	cache       CategoryCache
	validate    *validator.Validate
	logger      *logrus.Logger
	now         func() time.Time
}

// NewFeedbackService wires the service. cache may be nil.
func NewFeedbackService(repoManager *repository.RepositoryManager, cache CategoryCache, logger *logrus.Logger) *FeedbackService {
	v := validator.New()
	v.SetTagName("binding")
	return &FeedbackService{
		repoManager: repoManager,
		cache:       cache,
		validate:    v,
		logger:      logger,
		now:         time.Now,
	}
}

// ListCategories returns every category of the line, inactive ones
// included, ordered by sort order then slug.
func (s *FeedbackService) ListCategories(ctx context.Context, line models.ServiceLine) ([]models.CategoryDto, error) {
	if !line.Valid() {
		return nil, &ValidationError{Message: fmt.Sprintf("Unknown service line %q.", line)}
	}

	if s.cache != nil {
		cached, err := s.cache.GetCachedCategories(ctx, line)
		if err == nil {
			s.logger.WithField("service_line", line).Debug("Categories served from cache")
			return cached, nil
		}
		if !errors.Is(err, database.ErrCacheMiss) {
			s.logger.WithError(err).Warn("Category cache read failed")
		}
	}

	stored, err := s.repoManager.Category.ListByServiceLine(line)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories for %s: %w", line, err)
	}

	sort.SliceStable(stored, func(i, j int) bool {
		if stored[i].SortOrder != stored[j].SortOrder {
			return stored[i].SortOrder < stored[j].SortOrder
		}
		return stored[i].Slug < stored[j].Slug
	})

	categories := make([]models.CategoryDto, 0, len(stored))
	for _, c := range stored {
		categories = append(categories, c.ToDto())
	}

	if s.cache != nil {
		if err := s.cache.CacheCategories(ctx, line, categories, categoryCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache categories")
		}
	}

	return categories, nil
}

// Submit validates and stores one submission and returns it with its
// newly assigned id.
func (s *FeedbackService) Submit(ctx context.Context, payload models.SubmissionPayload, meta RequestMeta) (*models.FeedbackSubmission, error) {
	if err := s.validatePayload(payload); err != nil {
		return nil, err
	}

	category, err := s.repoManager.Category.GetBySlug(payload.ServiceLine, payload.CategorySlug)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !category.IsActive) {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownCategory, payload.ServiceLine, payload.CategorySlug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}

	submission := &models.FeedbackSubmission{
		ID:           utils.NewConfirmationID(),
		ServiceLine:  payload.ServiceLine,
		CategorySlug: payload.CategorySlug,
		Rating:       payload.Rating,
		Comment:      strings.TrimSpace(payload.Comment),
		IsAnonymous:  payload.IsAnonymous,
		ClientIP:     meta.ClientIP,
		UserAgent:    truncate(meta.UserAgent, 400),
		RequestID:    meta.RequestID,
		CreatedAt:    s.now(),
	}
	if !payload.IsAnonymous {
		submission.UserID = userIDString(payload.UserID)
	}

	if err := s.repoManager.Feedback.Create(submission); err != nil {
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":            submission.ID,
		"service_line":  submission.ServiceLine,
		"category_slug": submission.CategorySlug,
		"rating":        submission.Rating,
		"anonymous":     submission.IsAnonymous,
		"request_id":    meta.RequestID,
	}).Info("Feedback stored")

	return submission, nil
}

func (s *FeedbackService) Get(ctx context.Context, id string) (*models.FeedbackSubmission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	submission, err := s.repoManager.Feedback.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback %s: %w", id, err)
	}
	return submission, nil
}

func (s *FeedbackService) validatePayload(payload models.SubmissionPayload) error {
	if !payload.ServiceLine.Valid() {
		return &ValidationError{Message: fmt.Sprintf("Unknown service line %q.", payload.ServiceLine)}
	}
	if err := s.validate.Struct(payload); err != nil {
		return DescribeValidation(err)
	}
	return nil
}

// DescribeValidation turns validator errors into one user-facing message.
func DescribeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: "Invalid request format."}
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Rating":
		return &ValidationError{Message: "Rating must be between 1 and 5."}
	case "CategorySlug":
		return &ValidationError{Message: "Category is required."}
	case "Comment":
		return &ValidationError{Message: "Comment must be at most 2000 characters."}
	case "ServiceLine":
		return &ValidationError{Message: "Service line is required."}
	}
	return &ValidationError{Message: fmt.Sprintf("%s is invalid.", fe.Field())}
}

// userIDString normalises the JSON user id (number or string) for storage.
func userIDString(id interface{}) *string {
	var s string
	switch v := id.(type) {
	case nil:
		return nil
	case string:
		s = strings.TrimSpace(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		s = strconv.FormatInt(v, 10)
	case int:
		s = strconv.Itoa(v)
	default:
		s = fmt.Sprint(v)
	}
	if s == "" {
		return nil
	}
	return &s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
