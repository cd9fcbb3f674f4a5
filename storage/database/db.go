package database

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/trezcool/gradebook/core"
	appfs "github.com/trezcool/gradebook/fs"
)

const (
	sqliteDriver = "sqlite"
	dbFileName   = "attendance.db"
)

var (
	// mockable
	executableFunc = os.Executable
	homeDirFunc    = os.UserHomeDir
)

// ResolvePath returns the SQLite file to use: the configured path, else `data/attendance.db` next
// to the executable, else `~/Documents/AttendanceSystem/data/attendance.db` when the former
// directory cannot be created. The parent directory is created.
func ResolvePath(conf *core.Config) (string, error) {
	if conf.Database.Path != "" {
		path, err := filepath.Abs(conf.Database.Path)
		if err != nil {
			return "", errors.Wrap(err, "resolving database path")
		}
		if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", errors.Wrap(err, "creating database directory")
		}
		return path, nil
	}

	if exe, err := executableFunc(); err == nil {
		dataDir := filepath.Join(filepath.Dir(exe), "data")
		if err = os.MkdirAll(dataDir, 0o755); err == nil {
			return filepath.Join(dataDir, dbFileName), nil
		}
	}

	home, err := homeDirFunc()
	if err != nil {
		return "", errors.Wrap(err, "locating home directory")
	}
	dataDir := filepath.Join(home, "Documents", "AttendanceSystem", "data")
	if err = os.MkdirAll(dataDir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating data directory")
	}
	return filepath.Join(dataDir, dbFileName), nil
}

func sqliteDSN(path string) string {
	q := make(url.Values)
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	return "file:" + path + "?" + q.Encode()
}

func postgresURL(conf *core.Config) string {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   core.EnginePostgres,
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.Database.Address(),
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open connects to the configured database. SQLite paths are resolved and stored back into
// conf.Database.Path.
func Open(conf *core.Config) (*sqlx.DB, error) {
	switch conf.Database.Engine {
	case "", core.EngineSQLite:
		path, err := ResolvePath(conf)
		if err != nil {
			return nil, err
		}
		conf.Database.Path = path

		db, err := sqlx.Open(sqliteDriver, sqliteDSN(path))
		if err != nil {
			return nil, errors.Wrap(err, "opening database")
		}
		// single writer
		db.SetMaxOpenConns(1)
		return db, nil

	case core.EnginePostgres:
		db, err := sqlx.Open(core.EnginePostgres, postgresURL(conf)) // lib/pq
		if err != nil {
			return nil, errors.Wrap(err, "opening database")
		}
		if err = ping(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database engine %q", conf.Database.Engine)
	}
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// IsSQLite reports whether db runs on the embedded file database.
func IsSQLite(db *sqlx.DB) bool {
	return db.DriverName() == sqliteDriver
}

// PrepareMigrations points goose at the embedded migrations of db's dialect and returns their
// directory.
func PrepareMigrations(db *sqlx.DB) (string, error) {
	dialect := "postgres"
	if IsSQLite(db) {
		dialect = "sqlite3"
	}
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return "", errors.Wrap(err, "setting migrations dialect")
	}
	return appfs.MigrationsDir(dialect), nil
}

// Migrate applies every pending migration.
func Migrate(db *sqlx.DB) error {
	dir, err := PrepareMigrations(db)
	if err != nil {
		return err
	}
	if err = goose.Up(db.DB, dir); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// Transact runs fn in a transaction, committed if fn succeeds.
func Transact(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}
