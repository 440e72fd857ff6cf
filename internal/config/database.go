package config

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Database holds one logical database/project's connection, generalizing
// the teacher's single-database Database to the several the core can
// address by project name (spec §4.6, §6).
type Database struct {
	*sql.DB
	ProjectName string
	logger      *logrus.Logger
}

// OpenAll opens and migrates one *Database per entry in dbs. On any
// failure it closes whatever it already opened before returning the
// error, so callers never leak a connection from a partially-successful
// startup.
func OpenAll(dbs []DatabaseConfig, migrationsPath string, logger *logrus.Logger) ([]*Database, error) {
	opened := make([]*Database, 0, len(dbs))

	for _, cfg := range dbs {
		db, err := NewDatabase(cfg.ProjectName, cfg.URL, logger)
		if err != nil {
			closeAll(opened)
			return nil, fmt.Errorf("project %s: %w", cfg.ProjectName, err)
		}

		if err := db.Migrate(migrationsPath); err != nil {
			db.Close()
			closeAll(opened)
			return nil, fmt.Errorf("project %s: %w", cfg.ProjectName, err)
		}

		opened = append(opened, db)
	}

	return opened, nil
}

func closeAll(dbs []*Database) {
	for _, db := range dbs {
		db.Close()
	}
}

// NewDatabase creates a new database connection for one project.
func NewDatabase(projectName, databaseURL string, logger *logrus.Logger) (*Database, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.WithFields(logrus.Fields{"project": projectName}).Info("database connection established successfully")

	return &Database{DB: db, ProjectName: projectName, logger: logger}, nil
}

// Migrate runs database migrations for this project.
func (d *Database) Migrate(migrationsPath string) error {
	driver, err := postgres.WithInstance(d.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.logger.WithFields(logrus.Fields{"project": d.ProjectName}).Info("database migrations completed successfully")
	return nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
