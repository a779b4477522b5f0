package page

import (
	"context"
	defError "errors"
	"fmt"
	"strings"

	"storefront-builder/internal/block"
	"storefront-builder/internal/defaults"
	"storefront-builder/internal/errors"
	"storefront-builder/internal/worker"
	"storefront-builder/redis"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// every cached page read folds this counter into its key
const versionKey = "pages:version"

type Service interface {
	Resolve(ctx context.Context, slug string) (*Resolved, error)
	ResolveHome(ctx context.Context) (*Resolved, error)
	Get(ctx context.Context, id string) (*Page, error)
	List(ctx context.Context) ([]Page, error)
	Create(ctx context.Context, page *Page) error
	EnsureBySlug(ctx context.Context, slug string) (*Page, error)
	Publish(ctx context.Context, id string, blocks block.List, meta Meta) (*Page, error)
}

type DefaultService struct {
	repository PageRepository
	cache      *redis.Cache
	defaults   *defaults.Store
	pool       *worker.WorkerPool
	templates  map[string]struct{}
	log        logrus.FieldLogger
}

func NewService(
	repository PageRepository,
	cache *redis.Cache,
	defaultBlocks *defaults.Store,
	pool *worker.WorkerPool,
	templateSlugs []string,
	log logrus.FieldLogger,
) Service {
	templates := make(map[string]struct{}, len(templateSlugs))
	for _, s := range templateSlugs {
		templates[strings.ToLower(NormalizeSlug(s))] = struct{}{}
	}
	return &DefaultService{
		repository: repository,
		cache:      cache,
		defaults:   defaultBlocks,
		pool:       pool,
		templates:  templates,
		log:        log,
	}
}

// NormalizeSlug trims surrounding slashes and spaces. Case is kept; pages
// are looked up by exact slug.
func NormalizeSlug(slug string) string {
	return strings.Trim(strings.TrimSpace(slug), "/")
}

// IsTemplate reports whether slug is reserved for a template page, ignoring
// case.
func (s *DefaultService) IsTemplate(slug string) bool {
	_, ok := s.templates[strings.ToLower(NormalizeSlug(slug))]
	return ok
}

func (s *DefaultService) Resolve(ctx context.Context, slug string) (*Resolved, error) {
	slug = NormalizeSlug(slug)
	if s.IsTemplate(slug) {
		return nil, fmt.Errorf("resolve %q: %w", slug, errors.ErrTemplateNotAccessible)
	}
	if slug == "" {
		return s.ResolveHome(ctx)
	}

	v := s.cache.GetVersion(ctx, versionKey)
	cacheKey := fmt.Sprintf("page:slug:%s:v:%d", slug, v)

	var cached Resolved
	if found, _ := s.cache.Get(ctx, cacheKey, &cached); found {
		return &cached, nil
	}

	p, err := s.repository.FindBySlug(ctx, slug)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resolve %q: %w", slug, errors.ErrPageNotFound)
		}
		return nil, err
	}

	resolved, err := toResolved(p)
	if err != nil {
		return nil, err
	}
	s.fill(cacheKey, resolved)

	return resolved, nil
}

// ResolveHome returns the home page, or the default home blocks when no
// page holds the home flag yet.
func (s *DefaultService) ResolveHome(ctx context.Context) (*Resolved, error) {
	v := s.cache.GetVersion(ctx, versionKey)
	cacheKey := fmt.Sprintf("page:home:v:%d", v)

	var cached Resolved
	if found, _ := s.cache.Get(ctx, cacheKey, &cached); found {
		return &cached, nil
	}

	p, err := s.repository.FindHome(ctx)
	if err != nil {
		if !defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		blocks, ok := s.defaults.Home()
		if !ok {
			blocks = block.List{}
		}
		s.log.Debug("no home page stored, using default blocks")
		return &Resolved{Slug: defaults.HomeSlug, Blocks: blocks, Fallback: true}, nil
	}

	resolved, err := toResolved(p)
	if err != nil {
		return nil, err
	}
	s.fill(cacheKey, resolved)

	return resolved, nil
}

// fill stores r in the background; a full queue just skips the write.
func (s *DefaultService) fill(key string, r *Resolved) {
	if s.pool == nil {
		return
	}
	ttl := s.cache.TTL()
	s.pool.Submit(func(ctx context.Context) error {
		return s.cache.Set(ctx, key, r, ttl)
	})
}

func toResolved(p *Page) (*Resolved, error) {
	blocks, err := p.Blocks()
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", p.ID, err)
	}
	return &Resolved{
		ID:              p.ID,
		Slug:            p.Slug,
		Title:           p.Title,
		Blocks:          blocks,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
	}, nil
}

func (s *DefaultService) Get(ctx context.Context, id string) (*Page, error) {
	p, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("page %s: %w", id, errors.ErrPageNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *DefaultService) List(ctx context.Context) ([]Page, error) {
	return s.repository.List(ctx)
}

func (s *DefaultService) Create(ctx context.Context, page *Page) error {
	page.Slug = NormalizeSlug(page.Slug)
	if page.Slug == "" {
		return errors.BadRequest("Slug cannot be empty", nil)
	}
	if s.IsTemplate(page.Slug) {
		return errors.BadRequest("Slug is reserved for templates", nil)
	}
	if len(page.Content) > 0 {
		blocks, err := page.Blocks()
		if err != nil {
			return errors.UnprocessableEntity("Content is not a block list", err)
		}
		if err := block.Validate(blocks); err != nil {
			return errors.UnprocessableEntity(err.Error(), err)
		}
	}

	if err := s.repository.Create(ctx, page); err != nil {
		if defError.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Conflict("A page with this slug already exists", err)
		}
		return err
	}
	s.cache.IncrementVersion(ctx, versionKey)

	s.log.WithField("page_id", page.ID).WithField("slug", page.Slug).Info("page created")
	return nil
}

// EnsureBySlug returns the page for slug, creating it on first use. New
// pages start from the default blocks for that slug when there are any.
func (s *DefaultService) EnsureBySlug(ctx context.Context, slug string) (*Page, error) {
	slug = NormalizeSlug(slug)
	if slug == "" {
		slug = defaults.HomeSlug
	}

	p, err := s.repository.FindBySlug(ctx, slug)
	if err == nil {
		return p, nil
	}
	if !defError.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	seed, ok := s.defaults.Get(slug)
	if !ok {
		seed = block.List{}
	}
	content, err := seed.JSON()
	if err != nil {
		return nil, err
	}

	p = &Page{
		Slug:    slug,
		Title:   slug,
		Content: content,
		IsHome:  slug == defaults.HomeSlug,
	}
	if err := s.repository.Create(ctx, p); err != nil {
		// someone else created it first
		if defError.Is(err, gorm.ErrDuplicatedKey) {
			return s.repository.FindBySlug(ctx, slug)
		}
		return nil, err
	}
	s.cache.IncrementVersion(ctx, versionKey)

	s.log.WithField("page_id", p.ID).WithField("slug", slug).Info("page created on first edit")
	return p, nil
}

// Publish replaces the live content of page id with blocks. The last
// publish wins.
func (s *DefaultService) Publish(ctx context.Context, id string, blocks block.List, meta Meta) (*Page, error) {
	if err := block.Validate(blocks); err != nil {
		return nil, errors.UnprocessableEntity(err.Error(), err)
	}
	content, err := blocks.JSON()
	if err != nil {
		return nil, err
	}

	p, err := s.repository.UpdateContent(ctx, id, content, meta)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("page %s: %w", id, errors.ErrPageNotFound)
		}
		return nil, err
	}
	s.cache.IncrementVersion(ctx, versionKey)

	s.log.WithField("page_id", id).WithField("blocks", len(blocks)).Info("page published")
	return p, nil
}
