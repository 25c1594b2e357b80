package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/DurgaPrasad-54/helpline104-feedback/internal/health"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/middleware"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/models"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/services"
	"github.com/DurgaPrasad-54/helpline104-feedback/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// FeedbackService is what the handlers need from services.FeedbackService.
type FeedbackService interface {
	ListCategories(ctx context.Context, line models.ServiceLine) ([]models.CategoryDto, error)
	Submit(ctx context.Context, payload models.SubmissionPayload, meta services.RequestMeta) (*models.FeedbackSubmission, error)
	Get(ctx context.Context, id string) (*models.FeedbackSubmission, error)
}

type FeedbackHandler struct {
	service FeedbackService
	logger  *logrus.Logger
}

func NewFeedbackHandler(service FeedbackService, logger *logrus.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  logger,
	}
}

// HandleListCategories serves GET /feedback/categories?serviceLine=
func (h *FeedbackHandler) HandleListCategories(c *gin.Context) {
	raw := c.Query("serviceLine")
	if raw == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query parameter 'serviceLine' is required", nil)
		return
	}
	line, ok := models.ParseServiceLine(raw)
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "Unknown service line", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	categories, err := h.service.ListCategories(ctx, line)
	if err != nil {
		h.logger.WithError(err).WithField("service_line", line).Error("Failed to list categories")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load categories", nil)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Categories retrieved", categories)
}

// HandleSubmit serves POST /feedback
func (h *FeedbackHandler) HandleSubmit(c *gin.Context) {
	var payload models.SubmissionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.WithError(err).Debug("Invalid feedback request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid feedback", services.DescribeValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	submission, err := h.service.Submit(ctx, payload, services.RequestMeta{
		ClientIP:  c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString(middleware.RequestIDKey),
	})
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid feedback", err)
		return
	case errors.Is(err, services.ErrUnknownCategory):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "This category is not available for feedback.", nil)
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to save feedback")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to save feedback", nil)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Feedback recorded", models.SubmitResponse{ID: submission.ID})
}

// HandleGet serves GET /feedback/:id
func (h *FeedbackHandler) HandleGet(c *gin.Context) {
	submission, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		utils.ErrorResponse(c, http.StatusNotFound, "Feedback not found", nil)
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load feedback")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load feedback", nil)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Feedback retrieved", submission)
}

// HealthHandler serves GET /health
func HealthHandler(checker *health.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := checker.Check(c.Request.Context())
		code := http.StatusOK
		if report.Status != health.StatusHealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, models.HealthResponse{
			Status:    report.Status,
			Service:   "helpline104-feedback",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Services:  report.Services,
		})
	}
}

// RegisterRoutes mounts the feedback API under group. limiter guards
// the submit endpoint only.
func (h *FeedbackHandler) RegisterRoutes(group *gin.RouterGroup, limiter gin.HandlerFunc) {
	feedback := group.Group("/feedback")
	feedback.GET("/categories", h.HandleListCategories)
	feedback.POST("", limiter, h.HandleSubmit)
	feedback.GET("/:id", h.HandleGet)
}
