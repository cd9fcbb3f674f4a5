package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/report"
)

type (
	reportApi struct {
		svc *report.Service
	}

	reportResponse struct {
		report.Report
		Buckets []report.Bucket `json:"buckets"`
	}
)

func registerReportAPI(g *echo.Group, svc *report.Service) {
	api := reportApi{svc: svc}
	g.GET("/report", api.retrieve)
}

func (api *reportApi) retrieve(ctx echo.Context) error {
	rep, err := api.svc.Build(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building report")
	}
	if rep.Rows == nil {
		rep.Rows = []report.Row{}
	}
	return ctx.JSON(http.StatusOK, reportResponse{Report: rep, Buckets: rep.Summary.Buckets()})
}
