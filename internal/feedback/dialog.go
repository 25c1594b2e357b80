// Package feedback implements the feedback dialog: a star rating, a
// category picker and an optional comment, submitted to the feedback API.
//
// The dialog does not own its lifecycle. A host creates it when the dialog
// opens, calls Initialize once, forwards user input through the setters and
// renders Snapshot after every call.
package feedback

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/DurgaPrasad-54/helpline104-feedback/internal/feedbackapi"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/i18n"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/models"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/session"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// User-facing banners.
const (
	MsgInvalidForm  = "Pick a rating and a category."
	MsgRateLimited  = "Too many attempts. Try later."
	MsgSubmitFailed = "Submission failed."
	MsgLoadFailed   = "Could not load categories."
	MsgSubmitted    = "Thank you! Your feedback has been submitted."

	// ConfirmationPlaceholder stands in when the API answers without an id.
	ConfirmationPlaceholder = "submitted"
)

type CategoryLister interface {
	ListCategories(ctx context.Context, serviceLine models.ServiceLine) ([]models.CategoryDto, error)
}

type FeedbackSubmitter interface {
	SubmitFeedback(ctx context.Context, payload models.SubmissionPayload) (*models.SubmitResponse, error)
}

type SessionReader interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
}

type LanguageResolver interface {
	CurrentLanguage(ctx context.Context) (string, error)
}

// Dependencies are the external collaborators. Session and Language may
// be nil: the dialog then behaves as logged out and English.
type Dependencies struct {
	Categories CategoryLister
	Submitter  FeedbackSubmitter
	Session    SessionReader
	Language   LanguageResolver
}

// Props are the inputs the host sets on the dialog.
type Props struct {
	ServiceLine         models.ServiceLine
	DefaultCategorySlug string
}

// State is everything a host needs to render the dialog.
type State struct {
	Form                 Form                 `json:"form"`
	Categories           []models.CategoryDto `json:"categories"`
	ShowCategoryDropdown bool                 `json:"showCategoryDropdown"`
	Language             string               `json:"language"`
	LoggedIn             bool                 `json:"loggedIn"`
	Submitting           bool                 `json:"submitting"`
	LoadError            string               `json:"loadError,omitempty"`
	SubmitError          string               `json:"submitError,omitempty"`
	SuccessMessage       string               `json:"successMessage,omitempty"`
	ConfirmationID       string               `json:"confirmationId,omitempty"`
	Validation           ValidationResult     `json:"validation"`
}

type Dialog struct {
	deps     Dependencies
	props    Props
	logger   *logrus.Logger
	validate *validator.Validate

	mu              sync.Mutex
	form            Form
	categories      []models.CategoryDto
	categoriesReady bool
	showDropdown    bool
	language        string
	sessionUserID   string
	submitting      bool
	loadError       string
	submitError     string
	successMessage  string
	confirmationID  string
	validation      ValidationResult
}

func NewDialog(deps Dependencies, props Props, logger *logrus.Logger) *Dialog {
	return &Dialog{
		deps:     deps,
		props:    props,
		logger:   logger,
		validate: newValidator(),
		form:     defaultForm(""),
		language: i18n.DefaultLanguage,
	}
}

// Initialize resolves the display language, reads the session user and
// loads the categories of the service line. It never fails: problems end
// up as defaults or as the load-error banner.
func (d *Dialog) Initialize(ctx context.Context) {
	language := d.resolveLanguage(ctx)
	userID := d.readSessionUserID(ctx)

	d.mu.Lock()
	d.language = language
	d.sessionUserID = userID
	d.mu.Unlock()

	d.loadCategories(ctx)
}

func (d *Dialog) resolveLanguage(ctx context.Context) string {
	if d.deps.Language == nil {
		return i18n.DefaultLanguage
	}
	lang, err := d.deps.Language.CurrentLanguage(ctx)
	if err != nil || strings.TrimSpace(lang) == "" {
		d.logger.WithError(err).Warn("Could not resolve display language, using default")
		return i18n.DefaultLanguage
	}
	return lang
}

// readSessionUserID treats every failure as "not logged in".
func (d *Dialog) readSessionUserID(ctx context.Context) string {
	if d.deps.Session == nil {
		return ""
	}
	value, ok, err := d.deps.Session.GetItem(ctx, session.UserIDKey)
	if err != nil {
		d.logger.WithError(err).Warn("Session read failed, continuing logged out")
		return ""
	}
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func (d *Dialog) loadCategories(ctx context.Context) {
	categories, err := d.deps.Categories.ListCategories(ctx, d.props.ServiceLine)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.logger.WithError(err).WithField("service_line", d.props.ServiceLine).Error("Failed to load feedback categories")
		d.categories = nil
		d.categoriesReady = false
		d.showDropdown = false
		d.loadError = MsgLoadFailed
		return
	}

	active := make([]models.CategoryDto, 0, len(categories))
	for _, c := range categories {
		if c.IsActive() {
			active = append(active, c)
		}
	}

	d.categories = active
	d.categoriesReady = true
	d.showDropdown = len(active) > 0
	d.loadError = ""
	d.applyDefaultCategoryLocked()

	d.logger.WithFields(logrus.Fields{
		"service_line": d.props.ServiceLine,
		"received":     len(categories),
		"active":       len(active),
	}).Debug("Feedback categories loaded")
}

// defaultCategoryLocked: explicit prop first, then the first active category.
func (d *Dialog) defaultCategoryLocked() string {
	if d.props.DefaultCategorySlug != "" {
		return d.props.DefaultCategorySlug
	}
	return d.firstCategoryLocked()
}

func (d *Dialog) firstCategoryLocked() string {
	if len(d.categories) == 0 {
		return ""
	}
	return d.categories[0].Slug
}

func (d *Dialog) applyDefaultCategoryLocked() {
	if slug := d.defaultCategoryLocked(); slug != "" {
		d.form.CategorySlug = slug
	}
}

// SetDefaultCategorySlug updates the default-category prop. Before the
// categories arrive it is only remembered; it takes effect when they do.
func (d *Dialog) SetDefaultCategorySlug(slug string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.props.DefaultCategorySlug = strings.TrimSpace(slug)
	if d.categoriesReady {
		d.applyDefaultCategoryLocked()
	}
}

func (d *Dialog) SetRating(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.form.Rating = n
}

func (d *Dialog) ToggleAnonymous(checked bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.form.IsAnonymous = checked
}

func (d *Dialog) SetCategory(slug string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.form.CategorySlug = slug
}

func (d *Dialog) SetComment(comment string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.form.Comment = comment
}

// Validate checks the current form and records the result for rendering.
func (d *Dialog) Validate() ValidationResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.validation = validateForm(d.validate, d.form)
	return d.validation
}

// Submit sends the form when it is valid. Outcomes are reported through
// the banners in State; Submit itself never fails. The Submitting flag is
// for display and does not reject a second concurrent call.
func (d *Dialog) Submit(ctx context.Context) {
	d.mu.Lock()
	d.validation = validateForm(d.validate, d.form)
	if !d.validation.Valid() {
		d.submitError = MsgInvalidForm
		d.successMessage = ""
		d.confirmationID = ""
		d.mu.Unlock()
		return
	}
	payload := d.buildPayloadLocked()
	d.submitting = true
	d.mu.Unlock()

	resp, err := d.deps.Submitter.SubmitFeedback(ctx, payload)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.submitting = false

	if err != nil {
		d.submitError = submitErrorMessage(err)
		d.successMessage = ""
		d.confirmationID = ""
		d.logger.WithError(err).WithFields(logrus.Fields{
			"service_line":  payload.ServiceLine,
			"category_slug": payload.CategorySlug,
		}).Warn("Feedback submission failed")
		return
	}

	d.submitError = ""
	d.validation = ValidationResult{}
	d.confirmationID = ConfirmationPlaceholder
	if resp != nil && resp.ID != "" {
		d.confirmationID = resp.ID
	}
	d.successMessage = MsgSubmitted
	d.form = defaultForm(d.firstCategoryLocked())

	d.logger.WithFields(logrus.Fields{
		"service_line":    payload.ServiceLine,
		"confirmation_id": d.confirmationID,
	}).Info("Feedback submitted")
}

func (d *Dialog) buildPayloadLocked() models.SubmissionPayload {
	payload := models.SubmissionPayload{
		ServiceLine:  d.props.ServiceLine,
		CategorySlug: d.form.CategorySlug,
		Rating:       d.form.Rating,
		IsAnonymous:  d.form.IsAnonymous,
	}
	if d.form.Comment != "" {
		payload.Comment = d.form.Comment
	}
	if !d.form.IsAnonymous && d.sessionUserID != "" {
		payload.UserID = ResolveUserID(d.sessionUserID)
	}
	return payload
}

// ResolveUserID returns the leading base-10 integer of id ("12abc" is 12,
// "4.2" is 4) as an int64. Ids without leading digits, or whose digits
// overflow int64, are returned unchanged.
func ResolveUserID(id string) interface{} {
	s := strings.TrimLeft(id, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return id
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return id
	}
	return n
}

func submitErrorMessage(err error) string {
	var apiErr *feedbackapi.APIError
	if !errors.As(err, &apiErr) {
		return MsgSubmitFailed
	}
	if apiErr.Status == http.StatusTooManyRequests {
		return MsgRateLimited
	}
	if apiErr.Body.Error != "" {
		return apiErr.Body.Error
	}
	return MsgSubmitFailed
}

// CategoryLabel is the display name of slug in the resolved language.
func (d *Dialog) CategoryLabel(slug string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.categories {
		if c.Slug == slug {
			return c.Label(d.language)
		}
	}
	return slug
}

func (d *Dialog) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	categories := make([]models.CategoryDto, len(d.categories))
	copy(categories, d.categories)

	validation := ValidationResult{}
	if len(d.validation.Errors) > 0 {
		validation.Errors = make(map[string]string, len(d.validation.Errors))
		for k, v := range d.validation.Errors {
			validation.Errors[k] = v
		}
	}

	return State{
		Form:                 d.form,
		Categories:           categories,
		ShowCategoryDropdown: d.showDropdown,
		Language:             d.language,
		LoggedIn:             d.sessionUserID != "",
		Submitting:           d.submitting,
		LoadError:            d.loadError,
		SubmitError:          d.submitError,
		SuccessMessage:       d.successMessage,
		ConfirmationID:       d.confirmationID,
		Validation:           validation,
	}
}
