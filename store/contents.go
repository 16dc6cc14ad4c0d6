package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"filmkiste/models"
)

// Sort orders for listings.
const (
	SortNewest = "neueste"
	SortLikes  = "likes"
)

// ContentRow is a denormalized feed row: the content plus its owner's
// display name and the live like count.
type ContentRow struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	Slug        string    `json:"slug"`
	CreatedAt   time.Time `json:"created_at"`
	AuthorName  string    `json:"author_name"`
	LikeCount   int64     `json:"like_count"`
}

// contentRows builds the grouped aggregate join every listing and lookup
// shares: owner name via users, like count via a grouped LEFT JOIN instead
// of per-row lookups.
func (s *Store) contentRows() *gorm.DB {
	return s.db.Table("contents").
		Select("contents.*, users.name AS author_name, COUNT(likes.id) AS like_count").
		Joins("INNER JOIN users ON users.id = contents.user_id").
		Joins("LEFT JOIN likes ON likes.content_id = contents.id").
		Group("contents.id")
}

// CreateContent inserts a movie with a freshly reserved unique slug and
// returns the new id. Slug generation and the insert share one transaction;
// a lost slug race surfaces as a unique violation.
func (s *Store) CreateContent(title, description, category, image string, ownerID int) (int, error) {
	if !models.IsValidCategory(category) {
		return 0, fmt.Errorf("invalid category: %s", category)
	}

	content := models.Content{
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Category:    category,
		Image:       image,
		CreatedAt:   time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		slug, err := ReserveUniqueSlug(tx, NormalizeSlug(title))
		if err != nil {
			return err
		}
		content.Slug = slug
		return tx.Create(&content).Error
	})
	if err != nil {
		return 0, err
	}
	return content.ID, nil
}

// ListContents returns the full feed, newest first.
func (s *Store) ListContents() ([]ContentRow, error) {
	return s.ListContentsFiltered("", 0, SortNewest)
}

// ListContentsFiltered returns the feed under an optional category filter,
// optional author filter and one of the two sort orders. Zero values mean
// "no constraint".
func (s *Store) ListContentsFiltered(category string, ownerID int, sort string) ([]ContentRow, error) {
	query := s.contentRows()
	if category != "" {
		query = query.Where("contents.category = ?", category)
	}
	if ownerID != 0 {
		query = query.Where("contents.user_id = ?", ownerID)
	}

	switch sort {
	case SortLikes:
		query = query.Order("like_count DESC, contents.created_at DESC, contents.id DESC")
	default:
		query = query.Order("contents.created_at DESC, contents.id DESC")
	}

	var rows []ContentRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindContentBySlug returns the movie with its owner name and like count,
// or nil when the slug is unknown.
func (s *Store) FindContentBySlug(slug string) (*ContentRow, error) {
	return s.findContent("contents.slug = ?", slug)
}

// FindContentByID is FindContentBySlug for numeric ids.
func (s *Store) FindContentByID(id int) (*ContentRow, error) {
	return s.findContent("contents.id = ?", id)
}

func (s *Store) findContent(cond string, arg interface{}) (*ContentRow, error) {
	var rows []ContentRow
	if err := s.contentRows().Where(cond, arg).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// UpdateContent overwrites title, description and category of a movie. The
// image is only replaced when a new reference is supplied; nil means keep
// the existing one. Returns the number of rows affected (0 = not found).
func (s *Store) UpdateContent(id int, title, description, category string, image *string) (int64, error) {
	if !models.IsValidCategory(category) {
		return 0, fmt.Errorf("invalid category: %s", category)
	}

	updates := map[string]interface{}{
		"title":       title,
		"description": description,
		"category":    category,
	}
	if image != nil {
		updates["image"] = *image
	}

	result := s.db.Model(&models.Content{}).Where("id = ?", id).Updates(updates)
	return result.RowsAffected, result.Error
}

// DeleteContentByID removes a movie together with its likes and favorites
// in one transaction. Returns the number of content rows removed; 0 means
// not found and is not an error.
func (s *Store) DeleteContentByID(id int) (int64, error) {
	var affected int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("content_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("content_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Content{})
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}
