package store

import (
	"time"

	"gorm.io/gorm"

	"filmkiste/models"
)

// ToggleLike flips the like state for a (user, content) pair and returns the
// new state plus the resulting like count. Losing an insert race against a
// concurrent toggle resolves to "now present" instead of an error; a
// concurrent delete already removed the row and stays a no-op.
func (s *Store) ToggleLike(userID, contentID int) (bool, int64, error) {
	liked, err := s.toggle(&models.Like{}, userID, contentID, func(tx *gorm.DB) error {
		return tx.Create(&models.Like{UserID: userID, ContentID: contentID, CreatedAt: time.Now()}).Error
	})
	if err != nil {
		return false, 0, err
	}
	count, err := s.LikeCount(contentID)
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// ToggleFavorite flips the favorite state for a (user, content) pair and
// returns the new state.
func (s *Store) ToggleFavorite(userID, contentID int) (bool, error) {
	return s.toggle(&models.Favorite{}, userID, contentID, func(tx *gorm.DB) error {
		return tx.Create(&models.Favorite{UserID: userID, ContentID: contentID, CreatedAt: time.Now()}).Error
	})
}

// toggle implements the unconditional flip: check membership, then delete or
// insert inside one transaction. Callers cannot pick a desired state.
func (s *Store) toggle(model interface{}, userID, contentID int, insert func(tx *gorm.DB) error) (bool, error) {
	var present bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(model).
			Where("user_id = ? AND content_id = ?", userID, contentID).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			present = false
			return tx.Where("user_id = ? AND content_id = ?", userID, contentID).Delete(model).Error
		}

		present = true
		if err := insert(tx); err != nil {
			if IsUniqueViolation(err) {
				// someone else already flipped it to present
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return present, nil
}

// LikeCount returns the current number of likes for a movie.
func (s *Store) LikeCount(contentID int) (int64, error) {
	var count int64
	err := s.db.Model(&models.Like{}).Where("content_id = ?", contentID).Count(&count).Error
	return count, err
}

// HasUserLiked reports whether the user currently likes the movie.
func (s *Store) HasUserLiked(userID, contentID int) (bool, error) {
	return s.exists(&models.Like{}, userID, contentID)
}

// IsFavorite reports whether the movie is on the user's watch list.
func (s *Store) IsFavorite(userID, contentID int) (bool, error) {
	return s.exists(&models.Favorite{}, userID, contentID)
}

func (s *Store) exists(model interface{}, userID, contentID int) (bool, error) {
	var count int64
	err := s.db.Model(model).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Count(&count).Error
	return count > 0, err
}

// ListFavoritesOfUser returns the user's favorites, most recently
// favorited first.
func (s *Store) ListFavoritesOfUser(userID int) ([]ContentRow, error) {
	var rows []ContentRow
	err := s.db.Table("contents").
		Select("contents.*, users.name AS author_name, COUNT(likes.id) AS like_count").
		Joins("INNER JOIN users ON users.id = contents.user_id").
		Joins("INNER JOIN favorites ON favorites.content_id = contents.id").
		Joins("LEFT JOIN likes ON likes.content_id = contents.id").
		Where("favorites.user_id = ?", userID).
		Group("contents.id").
		Order("favorites.created_at DESC, contents.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
