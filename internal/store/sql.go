package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	config "example.com/miniter/internal/init"
	"example.com/miniter/internal/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var logg = logger.New()

//go:embed migrations
var migrationsFS embed.FS

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// --- Store Implementation ---

// Store persists users, follows and tweets in a relational database.
// Queries use $N placeholders, which both sqlite3 and postgres accept.
type Store struct {
	DB     *sql.DB
	driver string
}

// New opens the store selected by the configuration.
func New(cfg *config.Config) (StoreInterface, error) {
	if cfg.DBDriver == DriverMemory {
		logg.Info("store", "Using in-memory store (single process only)")
		return NewMock(), nil
	}

	st, err := Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if cfg.DBMaxOpenConns > 0 {
		st.DB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	return st, nil
}

// Open connects to the database and applies pending migrations.
func Open(driver, dsn string) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := runMigrations(db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logg.Info("store", "Connected to "+driver+" database (dsn anonymized)")
	return &Store{DB: db, driver: driver}, nil
}

// --- Migration runner ---

func runMigrations(db *sql.DB, driver string) error {
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	var dbDriver database.Driver
	switch driver {
	case DriverSQLite:
		dbDriver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case DriverPostgres:
		dbDriver, err = migratepostgres.WithInstance(db, &migratepostgres.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	// The migrate instance is not closed: closing it would close db as well.
	m, err := migrate.NewWithInstance("iofs", src, driver, dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logg.Info("store", "No new migrations to apply")
	} else {
		logg.Info("store", "Migrations applied successfully")
	}
	return nil
}

// isUniqueViolation reports whether err comes from a unique or primary key constraint.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close gracefully closes the database pool.
func (s *Store) Close() {
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			logg.Error("store", "Error closing database", err)
			return
		}
		logg.Info("store", "Database connection closed")
	}
}
