package database

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"flashplan/config"

	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/db"
	"github.com/umakantv/go-utils/db/migrations"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// InitializeDatabase connects and migrates. SQLite runs the migrations
// directory through go-utils; postgres runs the embedded copy through
// ApplySchema because the go-utils runner only speaks '?' placeholders.
func InitializeDatabase(cfg *config.Config) *sqlx.DB {
	dbConn := db.GetDBConnection(connectionConfig(cfg))

	var err error
	if cfg.DBDriver == "postgres" {
		err = ApplySchema(dbConn)
	} else {
		err = migrations.Migrate(dbConn, cfg.MigrationsDir)
	}
	if err != nil {
		logger.Error("Error while running migration", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Database initialized successfully", zap.String("driver", cfg.DBDriver))
	return dbConn
}

// connectionConfig maps Config onto go-utils DatabaseConfig, which builds
// a postgres DSN from its parts and uses DB verbatim for sqlite3.
func connectionConfig(cfg *config.Config) db.DatabaseConfig {
	if cfg.DBDriver == "postgres" {
		return db.DatabaseConfig{
			DRIVER:   cfg.DBDriver,
			HOST:     cfg.DBHost,
			PORT:     cfg.DBPort,
			USER:     cfg.DBUser,
			PASSWORD: cfg.DBPassword,
			DB:       cfg.DBName,
		}
	}
	return db.DatabaseConfig{DRIVER: cfg.DBDriver, DB: cfg.DBDSN}
}

// ApplySchema runs the bundled migrations that are not yet recorded in
// schema_migrations, each in its own transaction. It shares the table
// layout and version names of the go-utils runner, so either can pick up
// where the other left off.
func ApplySchema(dbConn *sqlx.DB) error {
	_, err := dbConn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		version := strings.TrimSuffix(path.Base(name), ".sql")
		if err := applyMigration(dbConn, name, version); err != nil {
			return fmt.Errorf("failed to apply %s: %w", version, err)
		}
	}
	return nil
}

func applyMigration(dbConn *sqlx.DB, name, version string) error {
	var applied bool
	err := dbConn.Get(&applied, dbConn.Rebind(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)`), version)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	body, err := migrationFiles.ReadFile(name)
	if err != nil {
		return err
	}

	tx, err := dbConn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(body)); err != nil {
		return err
	}
	if _, err := tx.Exec(tx.Rebind(`INSERT INTO schema_migrations (version) VALUES (?)`), version); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	logger.Info("Migration applied", zap.String("version", version))
	return nil
}
