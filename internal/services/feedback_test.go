package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DurgaPrasad-54/helpline104-feedback/internal/database"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/models"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memCategories struct {
	rows    []models.FeedbackCategory
	listErr error
	lists   int
}

func (m *memCategories) ListByServiceLine(line models.ServiceLine) ([]models.FeedbackCategory, error) {
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.FeedbackCategory
	for _, r := range m.rows {
		if r.ServiceLine == line {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memCategories) GetBySlug(line models.ServiceLine, slug string) (*models.FeedbackCategory, error) {
	for _, r := range m.rows {
		if r.ServiceLine == line && r.Slug == slug {
			c := r
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memCategories) Upsert(category *models.FeedbackCategory) error {
	m.rows = append(m.rows, *category)
	return nil
}

type memFeedback struct {
	stored map[string]models.FeedbackSubmission
}

func (m *memFeedback) Create(s *models.FeedbackSubmission) error {
	if m.stored == nil {
		m.stored = map[string]models.FeedbackSubmission{}
	}
	m.stored[s.ID] = *s
	return nil
}

func (m *memFeedback) GetByID(id string) (*models.FeedbackSubmission, error) {
	s, ok := m.stored[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

type memCache struct {
	entries map[models.ServiceLine][]models.CategoryDto
}

func (m *memCache) GetCachedCategories(_ context.Context, line models.ServiceLine) ([]models.CategoryDto, error) {
	c, ok := m.entries[line]
	if !ok {
		return nil, database.ErrCacheMiss
	}
	return c, nil
}

func (m *memCache) CacheCategories(_ context.Context, line models.ServiceLine, c []models.CategoryDto, _ time.Duration) error {
	if m.entries == nil {
		m.entries = map[models.ServiceLine][]models.CategoryDto{}
	}
	m.entries[line] = c
	return nil
}

func (m *memCache) InvalidateCategories(_ context.Context, lines ...models.ServiceLine) error {
	for _, l := range lines {
		delete(m.entries, l)
	}
	return nil
}

func seededCategories() *memCategories {
	return &memCategories{rows: []models.FeedbackCategory{
		{ServiceLine: models.ServiceLineTelemedicine, Slug: "video-quality", IsActive: true, SortOrder: 2},
		{ServiceLine: models.ServiceLineTelemedicine, Slug: "doctor-conduct", IsActive: true, SortOrder: 1},
		{ServiceLine: models.ServiceLineTelemedicine, Slug: "audio", IsActive: true, SortOrder: 2},
		{ServiceLine: models.ServiceLineTelemedicine, Slug: "retired", IsActive: false, SortOrder: 3},
		{ServiceLine: models.ServiceLinePharmacy, Slug: "delivery", IsActive: true},
	}}
}

func newTestService(cats *memCategories, fb *memFeedback, cache CategoryCache) *FeedbackService {
	repos := &repository.RepositoryManager{Category: cats, Feedback: fb}
	return NewFeedbackService(repos, cache, logrus.New())
}

func TestFeedbackService_ListCategories(t *testing.T) {
	cats := seededCategories()
	cache := &memCache{}
	svc := newTestService(cats, &memFeedback{}, cache)

	got, err := svc.ListCategories(context.Background(), models.ServiceLineTelemedicine)
	require.NoError(t, err)

	slugs := make([]string, 0, len(got))
	for _, c := range got {
		slugs = append(slugs, c.Slug)
	}
	assert.Equal(t, []string{"doctor-conduct", "audio", "video-quality", "retired"}, slugs)
	assert.False(t, got[3].IsActive())

	_, err = svc.ListCategories(context.Background(), models.ServiceLineTelemedicine)
	require.NoError(t, err)
	assert.Equal(t, 1, cats.lists, "second call should be served from cache")
}

func TestFeedbackService_ListCategoriesErrors(t *testing.T) {
	svc := newTestService(&memCategories{listErr: errors.New("db down")}, &memFeedback{}, nil)

	_, err := svc.ListCategories(context.Background(), "spaceflight")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.ListCategories(context.Background(), models.ServiceLineHelpline)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestFeedbackService_Submit(t *testing.T) {
	fb := &memFeedback{}
	svc := newTestService(seededCategories(), fb, nil)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	stored, err := svc.Submit(context.Background(), models.SubmissionPayload{
		ServiceLine:  models.ServiceLineTelemedicine,
		CategorySlug: "video-quality",
		Rating:       4,
		Comment:      "  Picture froze twice  ",
		IsAnonymous:  false,
		UserID:       float64(42),
	}, RequestMeta{ClientIP: "10.0.0.1", RequestID: "req-1"})
	require.NoError(t, err)

	_, err = uuid.Parse(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Picture froze twice", stored.Comment)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, "42", *stored.UserID)
	assert.Equal(t, fixed, stored.CreatedAt)
	assert.Contains(t, fb.stored, stored.ID)

	loaded, err := svc.Get(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "req-1", loaded.RequestID)
}

func TestFeedbackService_SubmitAnonymousDropsUser(t *testing.T) {
	svc := newTestService(seededCategories(), &memFeedback{}, nil)

	stored, err := svc.Submit(context.Background(), models.SubmissionPayload{
		ServiceLine:  models.ServiceLinePharmacy,
		CategorySlug: "delivery",
		Rating:       5,
		IsAnonymous:  true,
		UserID:       "user-7",
	}, RequestMeta{})
	require.NoError(t, err)
	assert.Nil(t, stored.UserID)
}

func TestFeedbackService_SubmitRejects(t *testing.T) {
	valid := models.SubmissionPayload{
		ServiceLine:  models.ServiceLineTelemedicine,
		CategorySlug: "video-quality",
		Rating:       3,
		IsAnonymous:  true,
	}

	tests := []struct {
		name    string
		mutate  func(p *models.SubmissionPayload)
		wantErr error
		message string
	}{
		{name: "unknown line", mutate: func(p *models.SubmissionPayload) { p.ServiceLine = "radiology" }, wantErr: ErrValidation},
		{name: "rating low", mutate: func(p *models.SubmissionPayload) { p.Rating = 0 }, wantErr: ErrValidation, message: "Rating must be between 1 and 5."},
		{name: "rating high", mutate: func(p *models.SubmissionPayload) { p.Rating = 6 }, wantErr: ErrValidation, message: "Rating must be between 1 and 5."},
		{name: "missing category", mutate: func(p *models.SubmissionPayload) { p.CategorySlug = "" }, wantErr: ErrValidation, message: "Category is required."},
		{name: "long comment", mutate: func(p *models.SubmissionPayload) { p.Comment = strings.Repeat("x", 2001) }, wantErr: ErrValidation, message: "Comment must be at most 2000 characters."},
		{name: "category of other line", mutate: func(p *models.SubmissionPayload) { p.CategorySlug = "delivery" }, wantErr: ErrUnknownCategory},
		{name: "inactive category", mutate: func(p *models.SubmissionPayload) { p.CategorySlug = "retired" }, wantErr: ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &memFeedback{}
			svc := newTestService(seededCategories(), fb, nil)
			payload := valid
			tt.mutate(&payload)

			_, err := svc.Submit(context.Background(), payload, RequestMeta{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			if tt.message != "" {
				assert.Equal(t, tt.message, err.Error())
			}
			assert.Empty(t, fb.stored)
		})
	}
}

func TestFeedbackService_GetMissing(t *testing.T) {
	svc := newTestService(seededCategories(), &memFeedback{}, nil)

	_, err := svc.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserIDString(t *testing.T) {
	assert.Nil(t, userIDString(nil))
	assert.Nil(t, userIDString("  "))
	assert.Equal(t, "12", *userIDString(float64(12)))
	assert.Equal(t, "9007199254740993", *userIDString(int64(9007199254740993)))
	assert.Equal(t, "abc", *userIDString("abc"))
}
