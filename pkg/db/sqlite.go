package db

import (
	"Prontu/pkg/models"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDatabase initializes the connection to the SQLite database.
// The database will be stored in the application's configuration directory.
func InitDatabase() error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return fmt.Errorf("could not get user config dir: %w", err)
	}

	dbPath := filepath.Join(configDir, "Prontu", "prontu.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return fmt.Errorf("could not create db directory: %w", err)
	}

	return openAt(dbPath)
}

// InitDatabaseAt opens the database at an explicit path. Used by tests.
func InitDatabaseAt(path string) error {
	return openAt(path)
}

func openAt(path string) error {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate schemas
	err = db.AutoMigrate(
		&models.Patient{},
		&models.GatewaySettings{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database schema: %w", err)
	}

	DB = db
	return nil
}
