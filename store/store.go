// Package store owns every query against the filmkiste schema. Handlers
// never touch gorm directly; they hold a *Store and get plain records back.
package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// IsUniqueViolation reports whether err is a unique-constraint failure from
// sqlite. Slug and email collisions as well as toggle insert races surface
// this way.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
