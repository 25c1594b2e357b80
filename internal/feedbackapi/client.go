package feedbackapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/DurgaPrasad-54/helpline104-feedback/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	categoriesPath = "/api/v1/feedback/categories"
	feedbackPath   = "/api/v1/feedback"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ListCategories fetches every category of a service line, inactive ones
// included. Filtering is the caller's business.
func (c *Client) ListCategories(ctx context.Context, serviceLine models.ServiceLine) ([]models.CategoryDto, error) {
	query := url.Values{}
	query.Set("serviceLine", serviceLine.String())

	var categories []models.CategoryDto
	if err := c.makeRequest(ctx, http.MethodGet, categoriesPath+"?"+query.Encode(), nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// SubmitFeedback posts one submission. The returned ID may be empty when
// the server did not echo one.
func (c *Client) SubmitFeedback(ctx context.Context, payload models.SubmissionPayload) (*models.SubmitResponse, error) {
	var response models.SubmitResponse
	if err := c.makeRequest(ctx, http.MethodPost, feedbackPath, payload, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, payload interface{}, result interface{}) error {
	target := c.baseURL + endpoint

	var body io.Reader
	var contentLength int

	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
		contentLength = len(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"url":      target,
		"has_body": payload != nil,
		"size":     contentLength,
	}).Debug("Making feedback API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"method":        method,
		"url":           target,
		"response_size": len(responseBody),
	}).Debug("Feedback API response received")

	var env envelope
	decodeErr := json.Unmarshal(responseBody, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Raw: string(responseBody)}
		if decodeErr == nil {
			apiErr.Body.Error = env.Error
		}
		return apiErr
	}

	if result == nil || len(responseBody) == 0 {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to unmarshal response: %w", decodeErr)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("failed to unmarshal response data: %w", err)
	}

	return nil
}
