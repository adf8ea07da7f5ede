package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Up applies every pending migration for driverName ("mysql" or "sqlite").
// It takes ownership of conn and closes it before returning, so callers hand
// in a dedicated handle rather than the serving pool.
func Up(driverName string, conn *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations/"+driverName)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("load %s migrations: %w", driverName, err)
	}

	var target database.Driver
	switch driverName {
	case "mysql":
		target, err = migratemysql.WithInstance(conn, &migratemysql.Config{})
	case "sqlite":
		target, err = migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("no migrations for driver %q", driverName)
	}
	if err != nil {
		_ = src.Close()
		_ = conn.Close()
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, target)
	if err != nil {
		_ = src.Close()
		_ = target.Close()
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
