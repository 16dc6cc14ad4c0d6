package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"filmkiste/models"
)

// ListUsers returns all users ordered by id. Password hashes are cleared.
func (s *Store) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = nil
	}
	return users, nil
}

// FindUserByEmail looks a user up by email, case-insensitively. The returned
// record includes the password hash for credential checks. Returns nil when
// no user matches.
func (s *Store) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ? COLLATE NOCASE", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a user and returns the new id. The email is stored
// lowercased; an empty role defaults to "user". A duplicate email surfaces
// as a unique violation.
func (s *Store) CreateUser(name, email, passwordHash, role string) (int, error) {
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		return 0, fmt.Errorf("invalid role: %s", role)
	}

	user := models.User{
		Name:      name,
		Role:      role,
		CreatedAt: time.Now(),
	}
	if email != "" {
		lower := strings.ToLower(email)
		user.Email = &lower
	}
	if passwordHash != "" {
		user.PasswordHash = &passwordHash
	}

	if err := s.db.Create(&user).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Author is a user that has posted at least one movie; used for the feed's
// author filter.
type Author struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ListAuthors returns all users with contents, alphabetical and
// case-insensitive.
func (s *Store) ListAuthors() ([]Author, error) {
	var authors []Author
	err := s.db.Table("users").
		Select("DISTINCT users.id, users.name").
		Joins("INNER JOIN contents ON contents.user_id = users.id").
		Order("users.name COLLATE NOCASE ASC").
		Scan(&authors).Error
	if err != nil {
		return nil, err
	}
	return authors, nil
}
