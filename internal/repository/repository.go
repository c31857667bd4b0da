package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicate is returned when an insert collides with a unique
// constraint (username, email or session token).
var ErrDuplicate = errors.New("duplicate key")

// AutoMigrate creates or updates the schema for every table this
// package owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userModel{}, &sessionModel{}, &trackModel{})
}

// IsDuplicate reports whether err is a unique-constraint violation,
// either as translated by gorm or as a raw Postgres error.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// the modernc sqlite driver is not covered by gorm's translation
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
