package store

import (
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"filmkiste/common"
	"filmkiste/models"
)

const seedMarkerKey = "demo_seeded"

// Demo credentials, printed once at seed time.
const (
	DemoAdminEmail    = "admin@filmkiste.local"
	DemoAdminPassword = "admin1234"
	DemoUserEmail     = "moritz@filmkiste.local"
	DemoUserPassword  = "moritz1234"
)

type demoMovie struct {
	title       string
	description string
	category    string
	image       string
}

var demoMovies = []demoMovie{
	{"Die Zeitmaschine", "Ein Erfinder reist ans Ende der Zeit.", "sifi", "/public/uploads/demo-zeitmaschine.jpg"},
	{"Das Schweigen im Walde", "Ein Kommissar ermittelt in einem Dorf ohne Zeugen.", "krimi", "/public/uploads/demo-schweigen.jpg"},
	{"Nachtschicht", "Eine Krankenschwester allein im leeren Krankenhaus.", "horror", "/public/uploads/demo-nachtschicht.jpg"},
	{"Oma dreht durch", "Familienchaos kurz vor dem 80. Geburtstag.", "komoedie", "/public/uploads/demo-oma.jpg"},
}

// SeedDemo inserts demo users and movies exactly once, guarded by the
// demo_seeded marker. Safe to call on every startup; the whole seed is a
// single transaction.
func (s *Store) SeedDemo() error {
	var marker models.SeedMarker
	err := s.db.First(&marker, "key = ?", seedMarkerKey).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	adminHash, err := common.HashPassword(DemoAdminPassword)
	if err != nil {
		return err
	}
	userHash, err := common.HashPassword(DemoUserPassword)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		admin := models.User{
			Name:         "Admin",
			Role:         models.RoleAdmin,
			Email:        ptr(strings.ToLower(DemoAdminEmail)),
			PasswordHash: &adminHash,
			CreatedAt:    time.Now(),
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		moritz := models.User{
			Name:         "Moritz",
			Role:         models.RoleUser,
			Email:        ptr(strings.ToLower(DemoUserEmail)),
			PasswordHash: &userHash,
			CreatedAt:    time.Now(),
		}
		if err := tx.Create(&moritz).Error; err != nil {
			return err
		}

		for _, m := range demoMovies {
			slug, err := ReserveUniqueSlug(tx, NormalizeSlug(m.title))
			if err != nil {
				return err
			}
			content := models.Content{
				UserID:      moritz.ID,
				Title:       m.title,
				Description: m.description,
				Category:    m.category,
				Image:       m.image,
				Slug:        slug,
				CreatedAt:   time.Now(),
			}
			if err := tx.Create(&content).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(&models.SeedMarker{Key: seedMarkerKey, Value: "1"}).Error; err != nil {
			return err
		}

		log.Printf("seeded demo data (admin: %s / %s)", DemoAdminEmail, DemoAdminPassword)
		return nil
	})
}

func ptr(s string) *string {
	return &s
}
