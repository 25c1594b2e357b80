package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/DurgaPrasad-54/helpline104-feedback/internal/config"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/database"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/feedback"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/feedbackapi"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/i18n"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/models"
	"github.com/DurgaPrasad-54/helpline104-feedback/internal/session"
	"github.com/DurgaPrasad-54/helpline104-feedback/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	serviceLine     = flag.String("service-line", string(models.ServiceLineTelemedicine), "Service line the feedback is about")
	rating          = flag.Int("rating", 0, "Star rating (1-5)")
	comment         = flag.String("comment", "", "Optional comment")
	category        = flag.String("category", "", "Category slug (defaults to the dialog's choice)")
	defaultCategory = flag.String("default-category", "", "Preferred default category slug")
	identified      = flag.Bool("identified", false, "Submit with the session's user id instead of anonymously")
	sessionID       = flag.String("session-id", "", "Browser session to read the user id from (redis)")
	userID          = flag.String("user-id", "", "User id for an in-memory session when no -session-id is given")
	language        = flag.String("lang", "", "Display language (overrides i18n.language)")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel, os.Stderr)
	utils.Logger = logger

	if err := cfg.ValidateFeedbackAPI(); err != nil {
		logger.WithError(err).Fatal("Feedback API configuration validation failed")
	}

	line, ok := models.ParseServiceLine(*serviceLine)
	if !ok {
		logger.WithFields(logrus.Fields{
			"service_line": *serviceLine,
			"known":        serviceLineNames(),
		}).Fatal("Unknown service line")
	}

	preferred := cfg.I18n.Language
	if *language != "" {
		preferred = *language
	}
	languages, err := i18n.NewService(cfg.I18n.Dir, preferred, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load language sets")
	}
	if *language != "" && !slices.Contains(languages.Languages(), strings.ToLower(strings.TrimSpace(*language))) {
		fmt.Fprintf(os.Stderr, "Language %q not available, using %s. Available: %s\n",
			*language, i18n.DefaultLanguage, strings.Join(languages.Languages(), ", "))
	}

	store, closeStore := openSession(cfg, logger)
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := feedbackapi.NewClient(cfg.FeedbackAPI.BaseURL, cfg.FeedbackAPI.APIKey, cfg.FeedbackAPI.Timeout, logger)

	dialog := feedback.NewDialog(feedback.Dependencies{
		Categories: client,
		Submitter:  client,
		Session:    store,
		Language:   languages,
	}, feedback.Props{
		ServiceLine:         line,
		DefaultCategorySlug: *defaultCategory,
	}, logger)

	dialog.Initialize(ctx)

	state := dialog.Snapshot()
	labels := languages.Set(state.Language)
	renderForm(os.Stdout, dialog, state, labels)

	dialog.SetRating(*rating)
	dialog.SetComment(*comment)
	dialog.ToggleAnonymous(!*identified)
	if *category != "" {
		dialog.SetCategory(*category)
	}

	dialog.Submit(ctx)

	if !renderResult(os.Stdout, dialog.Snapshot(), labels) {
		return 1
	}
	return 0
}

// openSession picks redis when a session id is given, otherwise an
// in-memory session seeded with -user-id.
func openSession(cfg *config.Config, logger *logrus.Logger) (session.Store, func()) {
	if *sessionID == "" {
		store := session.NewMemoryStore()
		if *userID != "" {
			_ = store.SetItem(context.Background(), session.UserIDKey, *userID)
		}
		return store, func() {}
	}

	client, err := database.NewRedisClient(cfg.Redis.URL)
	if err != nil {
		logger.WithError(err).Fatal("Failed to configure session storage")
	}
	store, err := session.NewRedisStore(client, cfg.Session.Prefix, *sessionID, cfg.Session.TTL)
	if err != nil {
		logger.WithError(err).Fatal("Invalid session")
	}
	return store, func() { client.Close() }
}

func renderForm(w io.Writer, dialog *feedback.Dialog, state feedback.State, labels i18n.LanguageSet) {
	fmt.Fprintf(w, "== %s ==\n", labels.Label("feedback.title", "Share your feedback"))

	if state.LoadError != "" {
		fmt.Fprintf(w, "! %s\n", state.LoadError)
	}
	if state.ShowCategoryDropdown {
		fmt.Fprintf(w, "%s:\n", labels.Label("feedback.category", "Category"))
		for _, c := range state.Categories {
			marker := " "
			if c.Slug == state.Form.CategorySlug {
				marker = "*"
			}
			fmt.Fprintf(w, " %s %s (%s)\n", marker, dialog.CategoryLabel(c.Slug), c.Slug)
		}
	}
}

// renderResult prints the outcome banner and reports whether it was a success.
func renderResult(w io.Writer, state feedback.State, labels i18n.LanguageSet) bool {
	if state.SubmitError != "" {
		fmt.Fprintf(w, "! %s\n", state.SubmitError)
		for _, field := range []string{"rating", "categorySlug", "comment"} {
			if msg := state.Validation.Message(field); msg != "" {
				fmt.Fprintf(w, "  - %s\n", msg)
			}
		}
		return false
	}

	fmt.Fprintln(w, state.SuccessMessage)
	fmt.Fprintf(w, "%s: %s\n", labels.Label("feedback.reference", "Reference"), strings.TrimSpace(state.ConfirmationID))
	return true
}

func serviceLineNames() string {
	lines := models.ServiceLines()
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		names = append(names, line.String())
	}
	return strings.Join(names, ", ")
}
