//go:build integration

package feedbackapi

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/DurgaPrasad-54/helpline104-feedback/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestIntegration_RealAPI(t *testing.T) {
	baseURL := os.Getenv("FEEDBACKAPI_BASE_URL")
	if baseURL == "" {
		t.Skip("FEEDBACKAPI_BASE_URL required for integration tests")
	}

	client := NewClient(baseURL, os.Getenv("FEEDBACKAPI_API_KEY"), 10*time.Second, logrus.New())
	ctx := context.Background()

	categories, err := client.ListCategories(ctx, models.ServiceLineTelemedicine)
	require.NoError(t, err)

	var slug string
	for _, c := range categories {
		if c.IsActive() {
			slug = c.Slug
			break
		}
	}
	if slug == "" {
		t.Skip("no active telemedicine category seeded")
	}

	resp, err := client.SubmitFeedback(ctx, models.SubmissionPayload{
		ServiceLine:  models.ServiceLineTelemedicine,
		CategorySlug: slug,
		Rating:       4,
		Comment:      "integration-test",
		IsAnonymous:  true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
}
