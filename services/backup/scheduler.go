// Package backupsvc runs database backups on a cron schedule.
package backupsvc

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/storage/database"
)

const backupTimeout = 5 * time.Minute

// BackupFunc writes one backup and returns its path.
type BackupFunc func(ctx context.Context) (string, error)

type Scheduler struct {
	cron   *cron.Cron
	spec   string
	backup BackupFunc
	logger core.Logger
}

// NewScheduler schedules database.Backup of db on conf.Backup.Schedule. A run is skipped while
// the previous one is still going.
func NewScheduler(db *sqlx.DB, conf *core.Config, logger core.Logger) (*Scheduler, error) {
	return New(conf.Backup.Schedule, func(ctx context.Context) (string, error) {
		return database.Backup(ctx, db, conf)
	}, logger)
}

// New schedules backup on spec, a standard 5 fields cron spec or a descriptor like "@daily".
func New(spec string, backup BackupFunc, logger core.Logger) (*Scheduler, error) {
	s := &Scheduler{spec: spec, backup: backup, logger: logger}
	clog := cronLogger{logger}
	s.cron = cron.New(
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)
	if _, err := s.cron.AddFunc(spec, func() { s.Run(context.Background()) }); err != nil {
		return nil, errors.Wrapf(err, "invalid backup schedule %q", spec)
	}
	return s, nil
}

// Run performs one backup and logs its outcome.
func (s *Scheduler) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, backupTimeout)
	defer cancel()

	start := time.Now()
	path, err := s.backup(ctx)
	if err != nil {
		s.logger.Error("scheduled backup failed", err)
		return
	}
	s.logger.Info("scheduled backup written", "path", path, "took", time.Since(start).String())
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info("backup scheduler started", "schedule", s.spec)
	s.cron.Start()
}

// Stop stops scheduling and waits for a running backup to complete, or ctx to be done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("backup scheduler stopped before the running backup completed")
	}
}

// cronLogger adapts core.Logger to cron.Logger.
type cronLogger struct {
	logger core.Logger
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{err}, keysAndValues...)...)
}
