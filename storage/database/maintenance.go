package database

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grading"
)

const (
	backupPrefix     = "attendance_backup_"
	backupExt        = ".db"
	backupTimeLayout = "20060102_150405"
)

var (
	// errors
	ErrBackupUnsupported = errors.New("backups are only supported for the SQLite database")

	nowFunc = time.Now // mockable
)

// BackupDir returns the configured backup directory, `<database dir>/backups` by default.
func BackupDir(conf *core.Config) string {
	if conf.Backup.Dir != "" {
		return conf.Backup.Dir
	}
	return filepath.Join(filepath.Dir(conf.Database.Path), "backups")
}

// Backup writes a consistent copy of the SQLite database to a timestamped file of the backup
// directory and prunes the oldest backups beyond conf.Backup.Keep. It returns the backup path.
func Backup(ctx context.Context, db *sqlx.DB, conf *core.Config) (string, error) {
	if !IsSQLite(db) {
		return "", ErrBackupUnsupported
	}

	dir := BackupDir(conf)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", pkgerrors.Wrap(err, "creating backup directory")
	}
	path := filepath.Join(dir, backupPrefix+nowFunc().Format(backupTimeLayout)+backupExt)
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return "", pkgerrors.Wrap(err, "backing up database")
	}

	if conf.Backup.Keep > 0 {
		if err := pruneBackups(dir, conf.Backup.Keep); err != nil {
			return path, err
		}
	}
	return path, nil
}

// ListBackups returns the backup files of dir, oldest first.
func ListBackups(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "listing backups")
	}
	var backups []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, backupExt) {
			backups = append(backups, filepath.Join(dir, name))
		}
	}
	sort.Strings(backups) // timestamps sort chronologically
	return backups, nil
}

func pruneBackups(dir string, keep int) error {
	backups, err := ListBackups(dir)
	if err != nil {
		return err
	}
	for len(backups) > keep {
		if err = os.Remove(backups[0]); err != nil {
			return pkgerrors.Wrap(err, "pruning backups")
		}
		backups = backups[1:]
	}
	return nil
}

type Info struct {
	Engine       string  `json:"engine"`
	Path         string  `json:"path,omitempty"`
	SizeMB       float64 `json:"size_mb"`
	Students     int     `json:"total_students"`
	Grades       int     `json:"total_grades"`
	Attendance   int     `json:"total_attendance"`
	Components   int     `json:"total_components"`
	BackupDir    string  `json:"backup_dir,omitempty"`
	Backups      int     `json:"backups"`
	LatestBackup string  `json:"latest_backup,omitempty"`
}

// GetInfo reports the database location, size and record counts.
func GetInfo(ctx context.Context, db *sqlx.DB, conf *core.Config) (Info, error) {
	info := Info{Engine: db.DriverName()}

	counts := []struct {
		table string
		dest  *int
	}{
		{"students", &info.Students},
		{"grades", &info.Grades},
		{"attendance", &info.Attendance},
		{"grading_config", &info.Components},
	}
	for _, c := range counts {
		if err := db.GetContext(ctx, c.dest, "SELECT COUNT(*) FROM "+c.table); err != nil {
			return Info{}, pkgerrors.Wrapf(err, "counting %s", c.table)
		}
	}

	if IsSQLite(db) {
		info.Path = conf.Database.Path
		if st, err := os.Stat(info.Path); err == nil {
			info.SizeMB = math.Round(float64(st.Size())/(1024*1024)*100) / 100
		}
		info.BackupDir = BackupDir(conf)
		backups, err := ListBackups(info.BackupDir)
		if err != nil {
			return Info{}, err
		}
		info.Backups = len(backups)
		if n := len(backups); n > 0 {
			info.LatestBackup = backups[n-1]
		}
	}
	return info, nil
}

// Clear deletes every record, keeping the schema, and restores the default grading
// configuration.
func Clear(ctx context.Context, db *sqlx.DB) error {
	return Transact(ctx, db, func(tx *sqlx.Tx) error {
		for _, table := range []string{"attendance", "grades", "students", "grading_config"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return pkgerrors.Wrapf(err, "clearing %s", table)
			}
		}
		if IsSQLite(db) {
			// reset autoincrement counters; the table only exists once a row was inserted
			_, _ = tx.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name IN ('students', 'attendance', 'grades', 'grading_config')")
		}
		return InsertWeights(ctx, tx, grading.DefaultWeights())
	})
}

// InsertWeights inserts weights in order.
func InsertWeights(ctx context.Context, tx *sqlx.Tx, weights grading.WeightConfig) error {
	for _, w := range weights {
		if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO grading_config (component, weight) VALUES (?, ?)"), w.Component, w.Weight); err != nil {
			return pkgerrors.Wrap(err, "inserting weights")
		}
	}
	return nil
}
