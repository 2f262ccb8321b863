package database

import "errors"

// Domain errors for the database package.
var (
	// ErrMigrationNotFound is returned when an applied migration has no file.
	ErrMigrationNotFound = errors.New("database: migration not found")

	// ErrNoDownMigration is returned when rolling back a migration without
	// a .down.sql file.
	ErrNoDownMigration = errors.New("database: migration has no down SQL")
)
