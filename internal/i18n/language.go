// Package i18n loads language sets (UI label catalogues) and tracks the
// current display language.
package i18n

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const DefaultLanguage = "en"

var ErrUnknownLanguage = errors.New("unknown language")

// LanguageSet is one language's label catalogue.
type LanguageSet struct {
	Code   string            `yaml:"code"`
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels"`
}

// Label returns the label for key, or fallback when the set lacks it.
func (s LanguageSet) Label(key, fallback string) string {
	if v, ok := s.Labels[key]; ok && v != "" {
		return v
	}
	return fallback
}

var builtinEnglish = LanguageSet{
	Code: DefaultLanguage,
	Name: "English",
	Labels: map[string]string{
		"feedback.title":     "Share your feedback",
		"feedback.rating":    "Rate your experience",
		"feedback.category":  "Category",
		"feedback.comment":   "Comment (optional)",
		"feedback.anonymous": "Submit anonymously",
		"feedback.submit":    "Submit",
		"feedback.reference": "Reference",
	},
}

type Service struct {
	mu      sync.RWMutex
	sets    map[string]LanguageSet
	current string
	logger  *logrus.Logger
}

// NewService loads every *.yaml under dir. A missing dir leaves only the
// built-in English set; a malformed file is an error.
func NewService(dir, preferred string, logger *logrus.Logger) (*Service, error) {
	s := &Service{
		sets:    map[string]LanguageSet{DefaultLanguage: builtinEnglish},
		current: DefaultLanguage,
		logger:  logger,
	}

	if dir != "" {
		if err := s.loadDir(dir); err != nil {
			return nil, err
		}
	}

	if preferred != "" {
		if err := s.SetLanguage(preferred); err != nil {
			logger.WithFields(logrus.Fields{
				"preferred": preferred,
				"fallback":  DefaultLanguage,
			}).Warn("Preferred language not available")
		}
	}

	return s, nil
}

func (s *Service) loadDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("failed to list language sets: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		set, err := loadSetFile(file)
		if err != nil {
			return err
		}
		if base, ok := s.sets[set.Code]; ok {
			set = merge(base, set)
		}
		s.sets[set.Code] = set
		s.logger.WithFields(logrus.Fields{
			"code":   set.Code,
			"labels": len(set.Labels),
		}).Debug("Language set loaded")
	}
	return nil
}

func loadSetFile(path string) (LanguageSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LanguageSet{}, fmt.Errorf("failed to read language set %s: %w", path, err)
	}

	var set LanguageSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return LanguageSet{}, fmt.Errorf("failed to parse language set %s: %w", path, err)
	}
	if set.Code == "" {
		set.Code = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	set.Code = normalise(set.Code)
	return set, nil
}

func merge(base, over LanguageSet) LanguageSet {
	labels := make(map[string]string, len(base.Labels)+len(over.Labels))
	for k, v := range base.Labels {
		labels[k] = v
	}
	for k, v := range over.Labels {
		labels[k] = v
	}
	if over.Name == "" {
		over.Name = base.Name
	}
	over.Labels = labels
	return over
}

func normalise(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// CurrentLanguage resolves the display language.
func (s *Service) CurrentLanguage(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *Service) SetLanguage(code string) error {
	code = normalise(code)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[code]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLanguage, code)
	}
	s.current = code
	return nil
}

// Set returns the language set for code, falling back to English labels
// for anything the set does not translate.
func (s *Service) Set(code string) LanguageSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[normalise(code)]
	if !ok {
		return s.sets[DefaultLanguage]
	}
	if set.Code == DefaultLanguage {
		return set
	}
	return merge(s.sets[DefaultLanguage], set)
}

func (s *Service) Languages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	codes := make([]string, 0, len(s.sets))
	for code := range s.sets {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
