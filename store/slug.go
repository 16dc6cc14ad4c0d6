package store

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"filmkiste/models"
)

// fallbackSlug is used when a title normalizes to nothing.
const fallbackSlug = "eintrag"

var (
	// nonSlugRunes matches every run of characters outside [a-z0-9]
	nonSlugRunes = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeSlug converts a title to a URL-safe slug candidate.
// Accented characters are decomposed and stripped of their marks, "&" becomes
// "und", everything outside [a-z0-9] collapses to a single hyphen.
// The result may be empty; ReserveUniqueSlug substitutes the fallback then.
func NormalizeSlug(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	slug, _, _ := transform.String(t, title)

	slug = strings.ToLower(slug)
	slug = strings.ReplaceAll(slug, "&", " und ")
	slug = nonSlugRunes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	return slug
}

// ReserveUniqueSlug resolves a candidate against the slugs already present,
// appending -2, -3, ... until a free one is found. Callers run it inside the
// same transaction as the insert; the unique index on contents.slug is the
// safety net if two writers race past the check.
func ReserveUniqueSlug(tx *gorm.DB, candidate string) (string, error) {
	if candidate == "" {
		candidate = fallbackSlug
	}

	slug := candidate
	for n := 2; ; n++ {
		var count int64
		if err := tx.Model(&models.Content{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", candidate, n)
	}
}
