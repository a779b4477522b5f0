package db

import (
	"context"
	"errors"

	"storefront-builder/internal/defaults"
	"storefront-builder/internal/page"
	"storefront-builder/internal/version"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, log logrus.FieldLogger) error {
	err := db.AutoMigrate(
		&page.Page{},
		&version.PageVersion{},
	)
	if err != nil {
		return err
	}

	log.Info("Database schema migrated successfully")
	return nil
}

// SeedData stores a home page built from the default blocks when the
// database has none yet.
func SeedData(ctx context.Context, db *gorm.DB, store *defaults.Store, log logrus.FieldLogger) error {
	repo := page.NewRepository(db)

	if _, err := repo.FindHome(ctx); err == nil {
		log.Debug("home page already exists")
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	blocks, ok := store.Home()
	if !ok {
		log.Info("no default home blocks, skipping seed")
		return nil
	}
	content, err := blocks.JSON()
	if err != nil {
		return err
	}

	home := &page.Page{
		Slug:    defaults.HomeSlug,
		Title:   "Home",
		Content: content,
		IsHome:  true,
	}
	if err := repo.Create(ctx, home); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Warn("a page with the home slug exists without the home flag, skipping seed")
			return nil
		}
		return err
	}

	log.WithField("page_id", home.ID).WithField("blocks", len(blocks)).Info("Created home page from defaults")
	return nil
}
