package config

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// MySQLDSN returns DB_DSN when set, otherwise builds one from the MYSQL_* parts.
func (e Env) MySQLDSN() string {
	if e.DBDSN != "" {
		return e.DBDSN
	}
	cfg := mysql.NewConfig()
	cfg.User = e.MySQLUser
	cfg.Passwd = e.MySQLPassword
	cfg.Net = "tcp"
	cfg.Addr = e.MySQLHost + ":" + strconv.Itoa(e.MySQLPort)
	cfg.DBName = e.MySQLDatabase
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.MultiStatements = true
	cfg.Timeout = 5 * time.Second
	cfg.ReadTimeout = 30 * time.Second
	cfg.WriteTimeout = 30 * time.Second
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// OpenDB opens the connection pool for the configured driver and pings it.
func OpenDB(ctx context.Context, env Env) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch env.DBDriver {
	case DriverMySQL, "":
		db, err = sql.Open(DriverMySQL, env.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(10 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)
	case DriverSQLite:
		db, err = OpenSQLite(env.SQLitePath)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", env.DBDriver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", env.DBDriver, err)
	}
	return db, nil
}

// OpenSQLite opens a file backed database, creating its directory. The pool is
// limited to one connection so writers never see SQLITE_BUSY.
func OpenSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open(DriverSQLite, path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// OpenMigrationConn opens a short lived handle for db.Up, which closes it.
func OpenMigrationConn(env Env) (*sql.DB, error) {
	switch env.DBDriver {
	case DriverMySQL, "":
		db, err := sql.Open(DriverMySQL, env.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		return db, nil
	case DriverSQLite:
		return OpenSQLite(env.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", env.DBDriver)
	}
}

// MigrationDriver is the migrations directory name for the configured driver.
func (e Env) MigrationDriver() string {
	if e.DBDriver == "" {
		return DriverMySQL
	}
	return e.DBDriver
}
