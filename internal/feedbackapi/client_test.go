package feedbackapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DurgaPrasad-54/helpline104-feedback/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(url, "test-key", time.Second, logrus.New())
}

func TestClient_ListCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/v1/feedback/categories", r.URL.Path)
		assert.Equal(t, "telemedicine", r.URL.Query().Get("serviceLine"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"slug":"video-quality","active":true},{"slug":"old","active":false},{"slug":"doctor"}]}`))
	}))
	defer server.Close()

	categories, err := newTestClient(server.URL).ListCategories(context.Background(), models.ServiceLineTelemedicine)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "video-quality", categories[0].Slug)
	assert.False(t, categories[1].IsActive())
	assert.Nil(t, categories[2].Active)
}

func TestClient_SubmitFeedback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/v1/feedback", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "helpline", body["serviceLine"])
		assert.Equal(t, float64(42), body["userId"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"data":{"id":"fb-123"}}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).SubmitFeedback(context.Background(), models.SubmissionPayload{
		ServiceLine:  models.ServiceLineHelpline,
		CategorySlug: "call-quality",
		Rating:       5,
		UserID:       int64(42),
	})
	require.NoError(t, err)
	assert.Equal(t, "fb-123", resp.ID)
}

func TestClient_SubmitFeedback_MissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).SubmitFeedback(context.Background(), models.SubmissionPayload{})
	require.NoError(t, err)
	assert.Empty(t, resp.ID)
}

func TestClient_ErrorHandling(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantError string
	}{
		{"structured", http.StatusUnprocessableEntity, `{"success":false,"error":"Unknown category"}`, "Unknown category"},
		{"rate limited", http.StatusTooManyRequests, `{"success":false,"error":"Too many attempts. Try later."}`, "Too many attempts. Try later."},
		{"plain text", http.StatusBadGateway, "upstream down", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).SubmitFeedback(context.Background(), models.SubmissionPayload{})
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantError, apiErr.Body.Error)
			assert.Equal(t, tt.body, apiErr.Raw)
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := newTestClient(server.URL).ListCategories(context.Background(), models.ServiceLinePharmacy)
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
