package version

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type VersionRepository interface {
	Create(ctx context.Context, v *PageVersion) error
	ListRecent(ctx context.Context, pageID string, limit int) ([]PageVersion, error)
	FindByID(ctx context.Context, pageID, id string) (*PageVersion, error)
}

type VersionRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) VersionRepository {
	return &VersionRepositoryImpl{db: db}
}

// Create numbers v after the highest existing version of its page. The
// (page_id, version_number) index rejects a concurrent save that read the
// same maximum.
func (r *VersionRepositoryImpl) Create(ctx context.Context, v *PageVersion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		if err := tx.Model(&PageVersion{}).
			Where("page_id = ?", v.PageID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&last).Error; err != nil {
			return err
		}

		v.VersionNumber = last + 1
		v.CreatedAt = time.Now().UTC()
		return tx.Create(v).Error
	})
}

// ListRecent returns the newest limit versions of a page, highest number first.
func (r *VersionRepositoryImpl) ListRecent(ctx context.Context, pageID string, limit int) ([]PageVersion, error) {
	var versions []PageVersion
	err := r.db.WithContext(ctx).
		Where("page_id = ?", pageID).
		Order("version_number DESC").
		Limit(limit).
		Find(&versions).Error
	return versions, err
}

func (r *VersionRepositoryImpl) FindByID(ctx context.Context, pageID, id string) (*PageVersion, error) {
	var v PageVersion
	err := r.db.WithContext(ctx).
		Where("page_id = ? AND id = ?", pageID, id).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}
