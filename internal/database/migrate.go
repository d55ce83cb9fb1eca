package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var schemaFiles embed.FS

// SchemaVersion is the last applied migration. Dirty means a migration
// failed halfway and the schema needs a manual Force.
type SchemaVersion struct {
	Version uint
	Dirty   bool
}

// Migrator applies the embedded vigia schema. golang-migrate only speaks
// database/sql, so it keeps its own handle apart from the pgx pool.
type Migrator struct {
	m        *migrate.Migrate
	db       *sql.DB
	database string
}

// OpenMigrator connects to dsn and resolves the database name from the
// server rather than parsing it out of the URL.
func OpenMigrator(dsn string) (*Migrator, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	var name string
	if err := db.QueryRow("SELECT current_database()").Scan(&name); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("resolve database name: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{DatabaseName: name})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create postgres driver: %w", err)
	}

	files, err := iofs.New(schemaFiles, "migrations")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", files, name, driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}

	return &Migrator{m: m, db: db, database: name}, nil
}

// MigrateUp brings the schema at dsn to the latest version
func MigrateUp(dsn string) error {
	migrator, err := OpenMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	return migrator.Up()
}

func (m *Migrator) Database() string {
	return m.database
}

// Up applies pending migrations; an up-to-date schema is not an error
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Rollback reverts the most recent migration
func (m *Migrator) Rollback() error {
	if err := m.m.Steps(-1); err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}
	return nil
}

// Current reports the applied version; zero on an empty database
func (m *Migrator) Current() (SchemaVersion, error) {
	version, dirty, err := m.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return SchemaVersion{}, nil
	case err != nil:
		return SchemaVersion{}, fmt.Errorf("read schema version: %w", err)
	}
	return SchemaVersion{Version: version, Dirty: dirty}, nil
}

// Force records version as applied and clears the dirty flag without
// running any SQL.
func (m *Migrator) Force(version uint) error {
	if version == 0 {
		return errors.New("force needs a version above zero")
	}
	if err := m.m.Force(int(version)); err != nil {
		return fmt.Errorf("force schema version %d: %w", version, err)
	}
	return nil
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	_ = m.db.Close()
	return errors.Join(srcErr, dbErr)
}
