// Package database provides the core functionality for creating and managing
// database connections in a clean, isolated manner.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/pkg/config"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// DB represents a wrapper around the standard SQL database connection.
type DB struct {
	*sql.DB
	Backend string // "sqlite" or "turso", for logging
}

// NewSQLiteConnection opens (creating the parent directory if needed) a
// local SQLite database file.
func NewSQLiteConnection(path string, logger *logging.ChanneledLogger) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return newConnection("sqlite3", path, "sqlite", logger)
}

// NewTursoConnection opens a remote Turso/libsql database.
func NewTursoConnection(databaseURL, authToken string, logger *logging.ChanneledLogger) (*DB, error) {
	connStr := databaseURL + "?authToken=" + authToken
	return newConnection("libsql", connStr, "turso", logger)
}

func newConnection(driverName, dataSourceName, backend string, logger *logging.ChanneledLogger) (*DB, error) {
	start := time.Now()
	logger.Storage().Debug("Creating new database connection", "driverName", driverName)

	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		logger.Storage().Error("Failed to open database connection", "error", err.Error(), "driverName", driverName)
		return nil, err
	}

	if err = db.Ping(); err != nil {
		logger.Storage().Error("Database ping failed", "error", err.Error(), "driverName", driverName)
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(config.DBMaxOpenConns)
	db.SetMaxIdleConns(config.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute)
	db.SetConnMaxIdleTime(time.Duration(config.DBConnMaxIdleMinutes) * time.Minute)

	logger.Storage().Info("Database connection established", "driverName", driverName, "duration", time.Since(start))
	return &DB{DB: db, Backend: backend}, nil
}

// GetConnectionInfo returns connection details for logging and status endpoints.
func (db *DB) GetConnectionInfo() string {
	stats := db.Stats()
	return fmt.Sprintf("%s (open: %d, inUse: %d, idle: %d)", db.Backend, stats.OpenConnections, stats.InUse, stats.Idle)
}
