package database

import (
	"log"

	"gorm.io/gorm"

	"filmkiste/models"
	"filmkiste/store"
)

// RunMigrations brings the schema to the current version. It only ever adds
// tables, columns and indexes; existing rows survive every step. Any failure
// must abort startup, the store may not come up on a partial schema.
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Content{},
		&models.Like{},
		&models.Favorite{},
		&models.SeedMarker{},
	); err != nil {
		log.Printf("Error running migrations: %v", err)
		return err
	}

	// Rows that predate the slug column need one before the unique index
	// can be enforced. The backfill uses the same generation rule as new
	// writes and is all-or-nothing.
	if err := backfillSlugs(db); err != nil {
		log.Printf("Error backfilling slugs: %v", err)
		return err
	}

	// Created after the backfill so it never sees an empty slug twice.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_contents_slug ON contents(slug)",
	).Error; err != nil {
		log.Printf("Error creating slug index: %v", err)
		return err
	}

	// Case-insensitive uniqueness, but only for users that have an email.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_nocase ON users(email COLLATE NOCASE) WHERE email IS NOT NULL",
	).Error; err != nil {
		log.Printf("Error creating email index: %v", err)
		return err
	}

	log.Println("Migrations completed successfully")
	return nil
}

func backfillSlugs(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var pending []models.Content
		if err := tx.Where("slug IS NULL OR slug = ''").Find(&pending).Error; err != nil {
			return err
		}

		for _, content := range pending {
			slug, err := store.ReserveUniqueSlug(tx, store.NormalizeSlug(content.Title))
			if err != nil {
				return err
			}
			if err := tx.Model(&models.Content{}).
				Where("id = ?", content.ID).
				Update("slug", slug).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
