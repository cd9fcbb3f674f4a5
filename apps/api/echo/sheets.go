package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/services/excel"
)

const (
	mimeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	fileField = "file"
)

type (
	sheetsApi struct {
		svc *excelsvc.Service
	}

	importResponse struct {
		excelsvc.ImportResult
		Message string `json:"message"`
	}
)

func registerSheetsAPI(g *echo.Group, svc *excelsvc.Service) {
	api := sheetsApi{svc: svc}
	g.GET("/exports/:kind", api.export)
	g.POST("/imports/:kind", api.upload)
}

func kindParam(ctx echo.Context) (excelsvc.Kind, error) {
	kind, err := excelsvc.ParseKind(ctx.Param("kind"))
	if err != nil {
		return "", errHttpNotFound
	}
	return kind, nil
}

// Handlers

func (api *sheetsApi) export(ctx echo.Context) error {
	kind, err := kindParam(ctx)
	if err != nil {
		return err
	}

	// buffered so that failures still get a JSON error response
	var buf bytes.Buffer
	if err = api.svc.Export(ctx.Request().Context(), kind, &buf); err != nil {
		return errors.Wrapf(err, "exporting %s", kind)
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", kind.FileName()))
	return ctx.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
}

func (api *sheetsApi) upload(ctx echo.Context) error {
	kind, err := kindParam(ctx)
	if err != nil {
		return err
	}
	if !kind.Importable() {
		return core.NewFieldError("kind", excelsvc.ErrNotImportable)
	}

	fh, err := ctx.FormFile(fileField)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: fileField, Error: "an xlsx file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	res, err := api.svc.Import(ctx.Request().Context(), kind, f)
	if err != nil {
		if errors.Is(err, excelsvc.ErrMissingColumns) || errors.Is(err, excelsvc.ErrEmptyWorkbook) || errors.Is(err, excelsvc.ErrBadWorkbook) {
			return core.NewFieldError(fileField, err)
		}
		return errors.Wrapf(err, "importing %s", kind)
	}
	return ctx.JSON(http.StatusOK, importResponse{ImportResult: res, Message: res.Message(kind)})
}
