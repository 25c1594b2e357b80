package seeder

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/DurgaPrasad-54/helpline104-feedback/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// CategorySeed is one category entry of a seed file.
type CategorySeed struct {
	Slug      string            `yaml:"slug"`
	Names     map[string]string `yaml:"names"`
	Active    *bool             `yaml:"active"`
	SortOrder int               `yaml:"sortOrder"`
}

// SeedFile maps a service line to its categories.
type SeedFile map[string][]CategorySeed

// CategoryProcessor cleans up seed entries before they are stored.
type CategoryProcessor struct {
	multiWhitespace *regexp.Regexp
	invalidSlug     *regexp.Regexp
	repeatedDash    *regexp.Regexp
}

func NewCategoryProcessor() *CategoryProcessor {
	return &CategoryProcessor{
		multiWhitespace: regexp.MustCompile(`\s+`),
		invalidSlug:     regexp.MustCompile(`[^a-z0-9_-]+`),
		repeatedDash:    regexp.MustCompile(`-{2,}`),
	}
}

// NormalizeSlug lowercases s, turns whitespace into '-' and drops
// anything that is not a letter, digit, '-' or '_'.
func (cp *CategoryProcessor) NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = cp.multiWhitespace.ReplaceAllString(s, "-")
	s = cp.invalidSlug.ReplaceAllString(s, "")
	s = cp.repeatedDash.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CleanName collapses whitespace in a display name.
func (cp *CategoryProcessor) CleanName(s string) string {
	return strings.TrimSpace(cp.multiWhitespace.ReplaceAllString(s, " "))
}

// Process turns a parsed seed file into categories ready to upsert.
// Unknown service lines are an error; entries whose slug normalises to
// nothing or repeats an earlier slug of the same line are skipped.
func (cp *CategoryProcessor) Process(file SeedFile, logger *logrus.Logger) ([]models.FeedbackCategory, error) {
	lines := make([]string, 0, len(file))
	for line := range file {
		lines = append(lines, line)
	}
	sort.Strings(lines)

	var categories []models.FeedbackCategory
	for _, raw := range lines {
		line, ok := models.ParseServiceLine(raw)
		if !ok {
			return nil, fmt.Errorf("unknown service line %q in seed file", raw)
		}

		seen := make(map[string]bool)
		for i, entry := range file[raw] {
			slug := cp.NormalizeSlug(entry.Slug)
			if slug == "" {
				logger.WithFields(logrus.Fields{"service_line": line, "index": i}).Warn("Skipping category without slug")
				continue
			}
			if seen[slug] {
				logger.WithFields(logrus.Fields{"service_line": line, "slug": slug}).Warn("Skipping duplicate category")
				continue
			}
			seen[slug] = true

			names := models.LocalizedNames{}
			for lang, name := range entry.Names {
				if cleaned := cp.CleanName(name); cleaned != "" {
					names[strings.ToLower(strings.TrimSpace(lang))] = cleaned
				}
			}

			active := true
			if entry.Active != nil {
				active = *entry.Active
			}

			categories = append(categories, models.FeedbackCategory{
				ServiceLine: line,
				Slug:        slug,
				Names:       names,
				IsActive:    active,
				SortOrder:   entry.SortOrder,
			})
		}
	}

	return categories, nil
}

// Decode parses a YAML seed document.
func Decode(r io.Reader) (SeedFile, error) {
	var file SeedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return file, nil
}

// LoadFile reads and parses the seed file at path.
func LoadFile(path string) (SeedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// CacheInvalidator drops cached category lists.
type CacheInvalidator interface {
	InvalidateCategories(ctx context.Context, lines ...models.ServiceLine) error
}

// Seeder stores processed categories.
type Seeder struct {
	repo   models.CategoryRepository
	cache  CacheInvalidator
	logger *logrus.Logger
}

// NewSeeder builds a Seeder; cache may be nil.
func NewSeeder(repo models.CategoryRepository, cache CacheInvalidator, logger *logrus.Logger) *Seeder {
	return &Seeder{repo: repo, cache: cache, logger: logger}
}

// Seed upserts every category and then invalidates the cache of each
// touched service line. It stops at the first storage error.
func (s *Seeder) Seed(ctx context.Context, categories []models.FeedbackCategory) (int, error) {
	touched := map[models.ServiceLine]bool{}
	var order []models.ServiceLine

	stored := 0
	for i := range categories {
		category := &categories[i]
		if err := s.repo.Upsert(category); err != nil {
			return stored, fmt.Errorf("failed to upsert %s/%s: %w", category.ServiceLine, category.Slug, err)
		}
		stored++
		s.logger.WithFields(logrus.Fields{
			"service_line": category.ServiceLine,
			"slug":         category.Slug,
			"active":       category.IsActive,
		}).Debug("Category stored")

		if !touched[category.ServiceLine] {
			touched[category.ServiceLine] = true
			order = append(order, category.ServiceLine)
		}
	}

	if s.cache != nil && len(order) > 0 {
		if err := s.cache.InvalidateCategories(ctx, order...); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate category cache")
		}
	}

	return stored, nil
}
