package echoapi

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/storage/database"
)

type maintenanceApi struct {
	db   *sqlx.DB
	conf *core.Config
}

func registerMaintenanceAPI(g *echo.Group, db *sqlx.DB, conf *core.Config) {
	api := maintenanceApi{db: db, conf: conf}
	g.GET("/info", api.info)
	g.POST("/backups", api.backup)
}

func (api *maintenanceApi) info(ctx echo.Context) error {
	info, err := database.GetInfo(ctx.Request().Context(), api.db, api.conf)
	if err != nil {
		return errors.Wrap(err, "getting database info")
	}
	return ctx.JSON(http.StatusOK, info)
}

func (api *maintenanceApi) backup(ctx echo.Context) error {
	path, err := database.Backup(ctx.Request().Context(), api.db, api.conf)
	if err != nil {
		return errors.Wrap(err, "backing up database")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"path": path})
}
