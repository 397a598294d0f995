package store

import (
	"database/sql"
)

// NewTestDB wraps an already-open connection and runs migrations.
// This is only intended for use in tests.
func NewTestDB(sqlDB *sql.DB) (*DB, error) {
	if err := migrate(sqlDB); err != nil {
		return nil, err
	}
	return &DB{sqlDB}, nil
}
