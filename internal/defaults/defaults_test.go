package defaults

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront-builder/internal/block"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
pages:
  home:
    - id: hero-1
      type: hero
      content:
        title: Welcome
        cta:
          label: Shop now
          url: /collections/all
    - id: grid-1
      type: product_grid
      content:
        limit: 4
  about:
    - id: text-1
      type: text
`

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestParse(t *testing.T) {
	pages, err := Parse([]byte(sample))
	require.NoError(t, err)

	home := pages["home"]
	require.Len(t, home, 2)
	assert.Equal(t, block.TypeHero, home[0].Type)
	assert.Equal(t, "Welcome", home[0].Content["title"])
	// numbers are normalised the same way as database content
	assert.Equal(t, float64(4), home[1].Content["limit"])
	assert.Len(t, pages["about"], 1)
}

func TestParse_RejectsDuplicateIDs(t *testing.T) {
	_, err := Parse([]byte("pages:\n  home:\n    - {id: a, type: hero}\n    - {id: a, type: faq}\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yml"), quietLogger())
	require.NoError(t, err)
	_, ok := s.Home()
	assert.False(t, ok)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStatic(map[string]block.List{
		"home": {{ID: "a", Type: block.TypeHero, Content: map[string]any{"title": "x"}}},
	})

	got, ok := s.Get("home")
	require.True(t, ok)
	got[0].Content["title"] = "changed"

	again, _ := s.Get("home")
	assert.Equal(t, "x", again[0].Content["title"])
}

func TestStore_WatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "defaults.yml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	s, err := Load(path, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Watch(ctx) }()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("pages:\n  home:\n    - {id: only, type: banner}\n"), 0o644))

	assert.Eventually(t, func() bool {
		home, ok := s.Home()
		return ok && len(home) == 1 && home[0].ID == "only"
	}, 3*time.Second, 50*time.Millisecond)
}
