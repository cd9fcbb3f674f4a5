package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"

	digcontainer "github.com/trezcool/gradebook/apps/api/di/dig"
	echoapi "github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core"
	backupsvc "github.com/trezcool/gradebook/services/backup"
	logsvc "github.com/trezcool/gradebook/services/logger"
)

func main() {
	c := digcontainer.New()

	must(c.Invoke(func(
		conf *core.Config,
		baseLogger *logsvc.Logger,
		apiLogger core.Logger,
		dbLoggerParam digcontainer.DBLoggerParam,
		db *sqlx.DB,
		scheduler *backupsvc.Scheduler,
		server echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		apiLogger.Info("Application initializing", "version", conf.Build, "database", db.DriverName())

		dbLogger := dbLoggerParam.Logger
		defer baseLogger.Sync()
		defer func() {
			if err := db.Close(); err != nil {
				dbLogger.Error("Failed to close", err)
			}
		}()
		defer apiLogger.Info("Application stopped")

		// =========================================================================
		// Start Backup Scheduler

		if scheduler != nil {
			scheduler.Start()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
				defer cancel()
				scheduler.Stop(ctx)
			}()
		}

		// =========================================================================
		// Start API Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			apiLogger.Error("server error", err)

		case sig := <-server.ShutdownSignal():
			apiLogger.Info("Start shutdown...", "signal", sig.String())

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				apiLogger.Error("could not stop server gracefully", err)

				if err = server.Close(); err != nil {
					apiLogger.Error("could not force stop server", err)
				}
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
