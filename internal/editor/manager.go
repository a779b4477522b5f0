// Package editor keeps open editing sessions. Each session owns its own
// undo history over a page's block list; nothing is persisted until the
// session publishes or saves a version.
package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront-builder/internal/block"
	"storefront-builder/internal/errors"
	"storefront-builder/internal/history"
	"storefront-builder/internal/metrics"
	"storefront-builder/internal/page"
	"storefront-builder/internal/version"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSessionTTL is how long an untouched session stays open.
const DefaultSessionTTL = 2 * time.Hour

// Pages is the part of the page service sessions use.
type Pages interface {
	EnsureBySlug(ctx context.Context, slug string) (*page.Page, error)
	Get(ctx context.Context, id string) (*page.Page, error)
	Publish(ctx context.Context, id string, blocks block.List, meta page.Meta) (*page.Page, error)
}

// Versions is the part of the version service sessions use.
type Versions interface {
	CreateVersion(ctx context.Context, pageID string, in version.NewVersion) (*version.PageVersion, error)
	RestoreVersion(ctx context.Context, pageID, versionID string) (*page.Page, error)
}

type session struct {
	id      string
	pageID  string
	slug    string
	history *history.Stack

	mu         sync.Mutex
	meta       page.Meta
	lastActive time.Time
}

// View is what every session operation returns.
type View struct {
	SessionID       string     `json:"session_id"`
	PageID          string     `json:"page_id"`
	Slug            string     `json:"slug"`
	Blocks          block.List `json:"blocks"`
	CanUndo         bool       `json:"can_undo"`
	CanRedo         bool       `json:"can_redo"`
	MetaTitle       string     `json:"meta_title"`
	MetaDescription string     `json:"meta_description"`
}

type Manager struct {
	pages        Pages
	versions     Versions
	historyLimit int
	ttl          time.Duration
	log          logrus.FieldLogger
	now          func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session

	sched *cron.Cron
}

type Option func(*Manager)

func WithHistoryLimit(n int) Option {
	return func(m *Manager) { m.historyLimit = n }
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

func NewManager(pages Pages, versions Versions, log logrus.FieldLogger, opts ...Option) *Manager {
	m := &Manager{
		pages:        pages,
		versions:     versions,
		historyLimit: history.DefaultLimit,
		ttl:          DefaultSessionTTL,
		log:          log,
		now:          time.Now,
		sessions:     map[string]*session{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open starts a session on slug, creating the page on first edit. The
// history starts at the live content with nothing to undo.
func (m *Manager) Open(ctx context.Context, slug string) (*View, error) {
	p, err := m.pages.EnsureBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	blocks, err := p.Blocks()
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", p.ID, err)
	}

	stack := history.New(blocks, history.WithLimit(m.historyLimit))

	s := &session{
		id:         uuid.NewString(),
		pageID:     p.ID,
		slug:       p.Slug,
		history:    stack,
		meta:       p.Meta(),
		lastActive: m.now(),
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	open := len(m.sessions)
	m.mu.Unlock()
	metrics.SetOpenSessions(open)

	m.log.WithField("session_id", s.id).WithField("page_id", p.ID).Info("editor session opened")
	return s.view(), nil
}

func (m *Manager) lookup(id string) (*session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, errors.ErrSessionNotFound)
	}

	s.mu.Lock()
	s.lastActive = m.now()
	s.mu.Unlock()
	return s, nil
}

func (s *session) view() *View {
	st := s.history.State()
	s.mu.Lock()
	meta := s.meta
	s.mu.Unlock()

	return &View{
		SessionID:       s.id,
		PageID:          s.pageID,
		Slug:            s.slug,
		Blocks:          st.Present,
		CanUndo:         st.CanUndo(),
		CanRedo:         st.CanRedo(),
		MetaTitle:       meta.MetaTitle,
		MetaDescription: meta.MetaDescription,
	}
}

func (m *Manager) Get(id string) (*View, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.view(), nil
}

// SetBlocks records blocks as the next edit. An edit equal to the current
// blocks leaves the history alone.
func (m *Manager) SetBlocks(id string, blocks block.List) (*View, error) {
	if err := block.Validate(blocks); err != nil {
		return nil, errors.UnprocessableEntity(err.Error(), err)
	}
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	s.history.SetBlocks(blocks)
	return s.view(), nil
}

func (m *Manager) Undo(id string) (*View, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	s.history.Undo()
	return s.view(), nil
}

func (m *Manager) Redo(id string) (*View, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	s.history.Redo()
	return s.view(), nil
}

// Reload discards the session's history and starts again from the live page.
func (m *Manager) Reload(ctx context.Context, id string) (*View, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	p, err := m.pages.Get(ctx, s.pageID)
	if err != nil {
		return nil, err
	}
	blocks, err := p.Blocks()
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", p.ID, err)
	}

	s.history.Reset(blocks)
	s.mu.Lock()
	s.meta = p.Meta()
	s.mu.Unlock()
	return s.view(), nil
}

// Publish writes the session's current blocks to the live page. A nil meta
// keeps the page's current meta fields.
func (m *Manager) Publish(ctx context.Context, id string, meta *page.Meta) (*View, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	current := s.meta
	s.mu.Unlock()
	if meta != nil {
		current = *meta
	}

	if _, err := m.pages.Publish(ctx, s.pageID, s.history.Blocks(), current); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.meta = current
	s.mu.Unlock()
	return s.view(), nil
}

// SaveVersion stores the session's current blocks as a new version of the page.
func (m *Manager) SaveVersion(ctx context.Context, id, label, createdBy string) (*version.PageVersion, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	meta := s.meta
	s.mu.Unlock()

	return m.versions.CreateVersion(ctx, s.pageID, version.NewVersion{
		Blocks:    s.history.Blocks(),
		Meta:      meta,
		Label:     label,
		CreatedBy: createdBy,
	})
}

// RestoreVersion restores a version onto the live page. The session's
// blocks and history are left as they are, whether the restore succeeds
// or not.
func (m *Manager) RestoreVersion(ctx context.Context, id, versionID string) (*page.Page, *View, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, nil, err
	}

	p, err := m.versions.RestoreVersion(ctx, s.pageID, versionID)
	if err != nil {
		return nil, nil, err
	}
	return p, s.view(), nil
}

func (m *Manager) Close(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	open := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, errors.ErrSessionNotFound)
	}
	metrics.SetOpenSessions(open)
	return nil
}

// Sweep closes sessions idle for longer than the session TTL and returns
// how many it closed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	closed := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastActive.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			closed++
		}
	}
	open := len(m.sessions)
	m.mu.Unlock()

	metrics.SetOpenSessions(open)
	if closed > 0 {
		m.log.WithField("closed", closed).Info("idle editor sessions closed")
	}
	return closed
}

// StartSweeper runs Sweep on schedule, a cron expression such as "@every 1m".
func (m *Manager) StartSweeper(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { m.Sweep() }); err != nil {
		return fmt.Errorf("session sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	m.sched = c
	return nil
}

// StopSweeper stops the sweeper and waits for a running sweep to finish.
func (m *Manager) StopSweeper() {
	if m.sched == nil {
		return
	}
	<-m.sched.Stop().Done()
	m.sched = nil
}
