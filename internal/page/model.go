package page

import (
	"time"

	"storefront-builder/internal/block"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Page is a storefront page; Content holds the live block list.
type Page struct {
	ID              string         `gorm:"type:uuid;primaryKey" json:"id"`
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`
	Title           string         `json:"title"`
	Content         datatypes.JSON `gorm:"type:jsonb" json:"content"`
	IsHome          bool           `gorm:"default:false;index" json:"is_home"`
	MetaTitle       string         `json:"meta_title"`
	MetaDescription string         `json:"meta_description"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (p *Page) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Blocks decodes the live content. Empty content is a page with no blocks.
func (p *Page) Blocks() (block.List, error) {
	return block.Parse(p.Content)
}

// Meta are the page fields published together with the content.
type Meta struct {
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
}

func (p *Page) Meta() Meta {
	return Meta{MetaTitle: p.MetaTitle, MetaDescription: p.MetaDescription}
}

// Resolved is a page ready for the storefront.
type Resolved struct {
	ID              string     `json:"id"`
	Slug            string     `json:"slug"`
	Title           string     `json:"title"`
	Blocks          block.List `json:"blocks"`
	MetaTitle       string     `json:"meta_title"`
	MetaDescription string     `json:"meta_description"`
	// Fallback is set when the blocks come from the built-in defaults.
	Fallback bool `json:"fallback,omitempty"`
}
