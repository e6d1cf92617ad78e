package db

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"osf/internal/config"
	"osf/internal/models"
)

// Open connects to the configured database. Queries are logged through logrus.
func Open(cfg config.DatabaseConfig, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(log, cfg.SlowThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.WithField("driver", cfg.Driver).Info("Database connection established")
	return conn, nil
}

// Migrate creates or updates every table the comment service uses.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Node{},
		&models.PrivateLink{},
		&models.WikiPage{},
		&models.Comment{},
		&models.ReportEntry{},
		&models.ReadCursor{},
		&models.AccessToken{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}
