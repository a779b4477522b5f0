// Package defaults serves the built-in block lists pages fall back to, read
// from a YAML file and reloaded when the file changes.
package defaults

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"storefront-builder/internal/block"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// HomeSlug is the key of the home page defaults.
const HomeSlug = "home"

// File is the layout of the defaults file:
//
//	pages:
//	  home:
//	    - id: hero-1
//	      type: hero
//	      content:
//	        title: Welcome
type File struct {
	Pages map[string][]fileBlock `yaml:"pages"`
}

type fileBlock struct {
	ID      string         `yaml:"id"`
	Type    string         `yaml:"type"`
	Content map[string]any `yaml:"content"`
}

type Store struct {
	path  string
	log   logrus.FieldLogger
	mu    sync.RWMutex
	pages map[string]block.List
}

// Load reads path. A missing file gives an empty store.
func Load(path string, log logrus.FieldLogger) (*Store, error) {
	s := &Store{path: path, log: log, pages: map[string]block.List{}}
	if path == "" {
		return s, nil
	}
	if err := s.reload(); err != nil {
		if os.IsNotExist(err) {
			log.WithField("file", path).Warn("defaults file not found, pages have no defaults")
			return s, nil
		}
		return nil, err
	}
	return s, nil
}

// NewStatic builds a store from in-memory lists.
func NewStatic(pages map[string]block.List) *Store {
	s := &Store{pages: make(map[string]block.List, len(pages)), log: logrus.New()}
	for slug, l := range pages {
		s.pages[slug] = l.Clone()
	}
	return s
}

// Get returns a copy of the default blocks for slug.
func (s *Store) Get(slug string) (block.List, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.pages[slug]
	if !ok {
		return nil, false
	}
	return l.Clone(), true
}

func (s *Store) Home() (block.List, bool) {
	return s.Get(HomeSlug)
}

// Parse decodes a defaults file. Values are normalised through JSON so
// they compare equal to lists loaded from the database.
func Parse(data []byte) (map[string]block.List, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse defaults: %w", err)
	}

	pages := make(map[string]block.List, len(f.Pages))
	for slug, blocks := range f.Pages {
		l := make(block.List, 0, len(blocks))
		for _, b := range blocks {
			l = append(l, block.Block{ID: b.ID, Type: block.Type(b.Type), Content: b.Content})
		}
		if err := block.Validate(l); err != nil {
			return nil, fmt.Errorf("defaults for %q: %w", slug, err)
		}

		data, err := l.JSON()
		if err != nil {
			return nil, fmt.Errorf("defaults for %q: %w", slug, err)
		}
		normalised, err := block.Parse(data)
		if err != nil {
			return nil, err
		}
		pages[slug] = normalised
	}
	return pages, nil
}

func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	pages, err := Parse(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.pages = pages
	s.mu.Unlock()
	return nil
}

// Watch reloads the store whenever the file is written or replaced, until
// ctx is done. A file that fails to parse keeps the previous defaults.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// watch the directory, editors often replace the file instead of writing it
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", s.path, err)
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.reload(); err != nil {
				s.log.WithError(err).WithField("file", s.path).Error("reload defaults failed")
				continue
			}
			s.log.WithField("file", s.path).Info("defaults reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.WithError(err).Warn("defaults watcher error")
		}
	}
}
