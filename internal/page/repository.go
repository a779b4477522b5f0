package page

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PageRepository interface {
	Create(ctx context.Context, page *Page) error
	FindByID(ctx context.Context, id string) (*Page, error)
	FindBySlug(ctx context.Context, slug string) (*Page, error)
	FindHome(ctx context.Context) (*Page, error)
	List(ctx context.Context) ([]Page, error)
	UpdateContent(ctx context.Context, id string, content []byte, meta Meta) (*Page, error)
}

type PageRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new page repository
func NewRepository(db *gorm.DB) PageRepository {
	return &PageRepositoryImpl{db: db}
}

func (r *PageRepositoryImpl) Create(ctx context.Context, page *Page) error {
	now := time.Now().UTC()
	page.CreatedAt = now
	page.UpdatedAt = now
	if len(page.Content) == 0 {
		page.Content = datatypes.JSON("[]")
	}
	return r.db.WithContext(ctx).Create(page).Error
}

func (r *PageRepositoryImpl) FindByID(ctx context.Context, id string) (*Page, error) {
	var page Page
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *PageRepositoryImpl) FindBySlug(ctx context.Context, slug string) (*Page, error) {
	var page Page
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// FindHome returns the most recently updated page flagged as home.
func (r *PageRepositoryImpl) FindHome(ctx context.Context) (*Page, error) {
	var page Page
	err := r.db.WithContext(ctx).
		Where("is_home = ?", true).
		Order("updated_at DESC").
		First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *PageRepositoryImpl) List(ctx context.Context) ([]Page, error) {
	var pages []Page
	err := r.db.WithContext(ctx).
		Select("id", "slug", "title", "is_home", "meta_title", "meta_description", "created_at", "updated_at").
		Order("slug ASC").
		Find(&pages).Error
	return pages, err
}

// UpdateContent overwrites the live content and meta in one statement.
func (r *PageRepositoryImpl) UpdateContent(ctx context.Context, id string, content []byte, meta Meta) (*Page, error) {
	res := r.db.WithContext(ctx).
		Model(&Page{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"content":          datatypes.JSON(content),
			"meta_title":       meta.MetaTitle,
			"meta_description": meta.MetaDescription,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.FindByID(ctx, id)
}
