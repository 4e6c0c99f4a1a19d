package service

import (
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/OnlyTachi/personal-finance-manager/internal/database"
)

// SystemService answers operational questions about the running instance.
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth verifies database connectivity.
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// SchemaVersion reports the applied migration version, 0 when it cannot be
// determined.
func (s *SystemService) SchemaVersion() int64 {
	v, err := goose.GetDBVersion(s.db)
	if err != nil {
		return 0
	}
	return v
}
