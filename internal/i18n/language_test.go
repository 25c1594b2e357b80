package i18n

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSet(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestNewService_BuiltinOnly(t *testing.T) {
	s, err := NewService(filepath.Join(t.TempDir(), "missing"), "", logrus.New())
	require.NoError(t, err)

	lang, err := s.CurrentLanguage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "en", lang)
	assert.Equal(t, []string{"en"}, s.Languages())
	assert.Equal(t, "Category", s.Set("en").Label("feedback.category", "x"))
}

func TestNewService_LoadsAndFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, "te.yaml", "labels:\n  feedback.category: \"వర్గం\"\n")

	s, err := NewService(dir, "TE", logrus.New())
	require.NoError(t, err)

	lang, _ := s.CurrentLanguage(context.Background())
	assert.Equal(t, "te", lang)

	set := s.Set(lang)
	assert.Equal(t, "వర్గం", set.Label("feedback.category", ""))
	assert.Equal(t, "Submit", set.Label("feedback.submit", ""), "untranslated labels come from English")
	assert.Equal(t, "fallback", set.Label("no.such.key", "fallback"))
}

func TestNewService_UnknownPreferredKeepsEnglish(t *testing.T) {
	s, err := NewService("", "fr", logrus.New())
	require.NoError(t, err)

	lang, _ := s.CurrentLanguage(context.Background())
	assert.Equal(t, "en", lang)
	assert.ErrorIs(t, s.SetLanguage("fr"), ErrUnknownLanguage)
}

func TestNewService_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeSet(t, dir, "bad.yaml", "labels: [unclosed")

	_, err := NewService(dir, "", logrus.New())
	assert.Error(t, err)
}

func TestCurrentLanguage_CancelledContext(t *testing.T) {
	s, err := NewService("", "", logrus.New())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.CurrentLanguage(ctx)
	assert.Error(t, err)
}
