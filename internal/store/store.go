// Package store wraps the relational cache with the upsert/query operations
// the companion needs. Records are flat copies of API responses.
package store

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a cached record does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
