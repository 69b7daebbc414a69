package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/promptform/promptform/internal/config"
	"github.com/promptform/promptform/internal/logger"
	"github.com/promptform/promptform/internal/types"
)

// Service owns the gorm handle and schema migration.
type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens the configured database. Postgres is the production driver;
// sqlite keeps local runs dependency-free.
func New(cfg config.DatabaseConfig, log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("db: unknown driver %q", cfg.Driver)
	}

	serviceLog.Info("Connecting to database", "driver", cfg.Driver)
	handle, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("db: connect (%s): %w", cfg.Driver, err)
	}

	return &Service{db: handle, log: serviceLog}, nil
}

// AutoMigrateAll creates or updates every table the service owns.
func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := s.db.AutoMigrate(
		&types.User{},
		&types.Form{},
		&types.FormSubmission{},
	); err != nil {
		return fmt.Errorf("db: auto migrate: %w", err)
	}
	return nil
}

// DB exposes the raw gorm handle for repos.
func (s *Service) DB() *gorm.DB {
	return s.db
}
