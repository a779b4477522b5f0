package version

import (
	"time"

	"storefront-builder/internal/block"
	"storefront-builder/internal/page"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PageVersion is a saved checkpoint of a page's content. Numbers are
// assigned per page, starting at 1.
type PageVersion struct {
	ID              string         `gorm:"type:uuid;primaryKey" json:"id"`
	PageID          string         `gorm:"type:uuid;not null;uniqueIndex:idx_page_version" json:"page_id"`
	VersionNumber   int            `gorm:"not null;uniqueIndex:idx_page_version" json:"version_number"`
	Content         datatypes.JSON `gorm:"type:jsonb" json:"content"`
	Label           string         `json:"label,omitempty"`
	MetaTitle       string         `json:"meta_title"`
	MetaDescription string         `json:"meta_description"`
	CreatedBy       string         `json:"created_by,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`

	Page *page.Page `gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE" json:"-"`
}

func (v *PageVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

func (v *PageVersion) Blocks() (block.List, error) {
	return block.Parse(v.Content)
}

func (v *PageVersion) Meta() page.Meta {
	return page.Meta{MetaTitle: v.MetaTitle, MetaDescription: v.MetaDescription}
}

// NewVersion is the input of CreateVersion.
type NewVersion struct {
	Blocks    block.List
	Meta      page.Meta
	Label     string
	CreatedBy string
}

// List is the version list shown next to the editor.
type List struct {
	Versions    []PageVersion `json:"versions"`
	IsCreating  bool          `json:"is_creating"`
	IsRestoring bool          `json:"is_restoring"`
}
