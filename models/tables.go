package models

import "time"

// Valid user roles.
const (
	RoleAdmin  = "admin"
	RoleUser   = "user"
	RoleEditor = "editor"
)

// Categories is the fixed set of movie categories.
var Categories = []string{"sifi", "krimi", "horror", "komoedie"}

// IsValidCategory reports whether category belongs to the fixed set.
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser || role == RoleEditor
}

type User struct {
	ID           int       `gorm:"primary_key;autoIncrement" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Role         string    `gorm:"not null;default:'user'" json:"role"`
	Email        *string   `json:"email,omitempty"` // nullable; NOCASE uniqueness comes from a partial index in migrations
	PasswordHash *string   `json:"-"`               // json:"-" prevents password from being exposed in API
	CreatedAt    time.Time `json:"created_at"`
}

type Content struct {
	ID          int       `gorm:"primary_key;autoIncrement" json:"id"`
	UserID      int       `gorm:"not null;index" json:"user_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"not null;index" json:"category"`
	Image       string    `gorm:"not null" json:"image"`
	Slug        string    `json:"slug"` // unique index created in migrations, after backfill
	CreatedAt   time.Time `json:"created_at"`
}

type Like struct {
	ID        uint      `gorm:"primary_key"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_likes_user_content" json:"user_id"`
	ContentID int       `gorm:"not null;uniqueIndex:idx_likes_user_content;index" json:"content_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Favorite struct {
	ID        uint      `gorm:"primary_key"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_favorites_user_content" json:"user_id"`
	ContentID int       `gorm:"not null;uniqueIndex:idx_favorites_user_content;index" json:"content_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SeedMarker guards one-time demo-data insertion.
type SeedMarker struct {
	Key   string `gorm:"primary_key"`
	Value string `gorm:"not null"`
}
