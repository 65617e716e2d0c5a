package database

import (
	"festbook/internal/attempts"

	"gorm.io/gorm"
)

// Migrate creates the tables festbook owns. Programs, bookings and users
// live in the festival backend.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&attempts.Attempt{},
	)
}
