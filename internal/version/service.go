package version

import (
	"context"
	defError "errors"
	"fmt"
	"sync"

	"storefront-builder/internal/block"
	"storefront-builder/internal/errors"
	"storefront-builder/internal/metrics"
	"storefront-builder/internal/page"
	"storefront-builder/redis"

	"github.com/sirupsen/logrus"
	"github.com/wI2L/jsondiff"
	"gorm.io/gorm"
)

// DefaultListLimit is how many versions a listing shows.
const DefaultListLimit = 20

type Service interface {
	CreateVersion(ctx context.Context, pageID string, in NewVersion) (*PageVersion, error)
	RestoreVersion(ctx context.Context, pageID, versionID string) (*page.Page, error)
	ListVersions(ctx context.Context, pageID string, limit int) (*List, error)
	CompareVersion(ctx context.Context, pageID, versionID string) (jsondiff.Patch, error)
	IsCreating(pageID string) bool
	IsRestoring(pageID string) bool
}

// PagePublisher reads and overwrites live page content.
type PagePublisher interface {
	Get(ctx context.Context, id string) (*page.Page, error)
	Publish(ctx context.Context, id string, blocks block.List, meta page.Meta) (*page.Page, error)
}

type DefaultService struct {
	repository VersionRepository
	pages      PagePublisher
	cache      *redis.Cache
	listLimit  int
	log        logrus.FieldLogger

	mu        sync.Mutex
	creating  map[string]int
	restoring map[string]int
}

func NewService(
	repository VersionRepository,
	pages PagePublisher,
	cache *redis.Cache,
	listLimit int,
	log logrus.FieldLogger,
) Service {
	if listLimit < 1 {
		listLimit = DefaultListLimit
	}
	return &DefaultService{
		repository: repository,
		pages:      pages,
		cache:      cache,
		listLimit:  listLimit,
		log:        log,
		creating:   map[string]int{},
		restoring:  map[string]int{},
	}
}

func listVersionKey(pageID string) string {
	return fmt.Sprintf("page:%s:versions:version", pageID)
}

// track marks an operation on pageID as in flight until the returned func runs.
func (s *DefaultService) track(set map[string]int, pageID string) func() {
	s.mu.Lock()
	set[pageID]++
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if set[pageID]--; set[pageID] <= 0 {
			delete(set, pageID)
		}
	}
}

func (s *DefaultService) inFlight(set map[string]int, pageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return set[pageID] > 0
}

func (s *DefaultService) IsCreating(pageID string) bool {
	return s.inFlight(s.creating, pageID)
}

func (s *DefaultService) IsRestoring(pageID string) bool {
	return s.inFlight(s.restoring, pageID)
}

// CreateVersion saves in as the next version of pageID.
func (s *DefaultService) CreateVersion(ctx context.Context, pageID string, in NewVersion) (v *PageVersion, err error) {
	defer func() { metrics.RecordVersionOp("create", err) }()

	if pageID == "" {
		return nil, errors.ErrPageNotSelected
	}
	if err := block.Validate(in.Blocks); err != nil {
		return nil, errors.UnprocessableEntity(err.Error(), err)
	}
	content, err := in.Blocks.JSON()
	if err != nil {
		return nil, err
	}

	done := s.track(s.creating, pageID)
	defer done()

	v = &PageVersion{
		PageID:          pageID,
		Content:         content,
		Label:           in.Label,
		MetaTitle:       in.Meta.MetaTitle,
		MetaDescription: in.Meta.MetaDescription,
		CreatedBy:       in.CreatedBy,
	}
	if err := s.repository.Create(ctx, v); err != nil {
		if defError.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Conflict("Another version was saved at the same time, try again", err)
		}
		if defError.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, fmt.Errorf("page %s: %w", pageID, errors.ErrPageNotFound)
		}
		return nil, err
	}
	s.cache.IncrementVersion(ctx, listVersionKey(pageID))

	s.log.WithField("page_id", pageID).WithField("version", v.VersionNumber).Info("version created")
	return v, nil
}

// RestoreVersion publishes the content and meta of versionID as the live
// page. Only versions in the current listing can be restored, and restoring
// never creates a version of its own.
func (s *DefaultService) RestoreVersion(ctx context.Context, pageID, versionID string) (p *page.Page, err error) {
	defer func() { metrics.RecordVersionOp("restore", err) }()

	if pageID == "" {
		return nil, errors.ErrPageNotSelected
	}

	done := s.track(s.restoring, pageID)
	defer done()

	recent, err := s.repository.ListRecent(ctx, pageID, s.listLimit)
	if err != nil {
		return nil, err
	}
	var target *PageVersion
	for i := range recent {
		if recent[i].ID == versionID {
			target = &recent[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("version %s of page %s: %w", versionID, pageID, errors.ErrVersionNotFound)
	}

	blocks, err := target.Blocks()
	if err != nil {
		return nil, fmt.Errorf("version %s: %w", versionID, err)
	}

	// the live content is overwritten as is; it is not saved first
	p, err = s.pages.Publish(ctx, pageID, blocks, target.Meta())
	if err != nil {
		return nil, err
	}
	s.cache.IncrementVersion(ctx, listVersionKey(pageID))

	s.log.WithField("page_id", pageID).WithField("version", target.VersionNumber).Info("version restored")
	return p, nil
}

// ListVersions returns the most recent versions of pageID, newest first.
// limit is capped at the configured list size; 0 means the full list.
func (s *DefaultService) ListVersions(ctx context.Context, pageID string, limit int) (*List, error) {
	if pageID == "" {
		return nil, errors.ErrPageNotSelected
	}
	if limit < 1 || limit > s.listLimit {
		limit = s.listLimit
	}

	v := s.cache.GetVersion(ctx, listVersionKey(pageID))
	cacheKey := fmt.Sprintf("page:%s:versions:v:%d:n:%d", pageID, v, limit)

	var versions []PageVersion
	found, _ := s.cache.Get(ctx, cacheKey, &versions)
	if !found {
		var err error
		versions, err = s.repository.ListRecent(ctx, pageID, limit)
		if err != nil {
			return nil, err
		}
		if versions == nil {
			versions = []PageVersion{}
		}
		if err := s.cache.Set(ctx, cacheKey, versions, s.cache.TTL()); err != nil {
			s.log.WithError(err).Warn("cache version list")
		}
	}

	return &List{
		Versions:    versions,
		IsCreating:  s.IsCreating(pageID),
		IsRestoring: s.IsRestoring(pageID),
	}, nil
}

// CompareVersion returns the patch that turns versionID's content into the
// live content of the page.
func (s *DefaultService) CompareVersion(ctx context.Context, pageID, versionID string) (jsondiff.Patch, error) {
	v, err := s.repository.FindByID(ctx, pageID, versionID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("version %s: %w", versionID, errors.ErrVersionNotFound)
		}
		return nil, err
	}
	live, err := s.pages.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}

	from, err := v.Blocks()
	if err != nil {
		return nil, err
	}
	to, err := live.Blocks()
	if err != nil {
		return nil, err
	}
	return block.Diff(from, to)
}
