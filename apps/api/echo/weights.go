package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/grading"
)

type (
	weightsApi struct {
		svc *grading.Service
	}

	weightsResponse struct {
		Weights grading.WeightConfig `json:"weights"`
		Total   float64              `json:"total"`
	}
)

func registerWeightsAPI(g *echo.Group, svc *grading.Service) {
	api := weightsApi{svc: svc}

	wg := g.Group("/weights")
	wg.GET("", api.retrieve)
	wg.PUT("", api.update)
	wg.POST("/reset", api.reset)
	wg.POST("/components", api.addComponent)
	wg.DELETE("/components/:name", api.removeComponent)
}

func respondWeights(ctx echo.Context, code int, wc grading.WeightConfig) error {
	return ctx.JSON(code, weightsResponse{Weights: wc, Total: wc.Total()})
}

// Handlers

func (api *weightsApi) retrieve(ctx echo.Context) error {
	wc, err := api.svc.Weights(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading weights")
	}
	return respondWeights(ctx, http.StatusOK, wc)
}

// update changes the weights of the listed components; the resulting total must be 100%.
func (api *weightsApi) update(ctx echo.Context) error {
	var data grading.SaveWeights
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveWeights")
	}

	wc, err := api.svc.Save(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving weights")
	}
	return respondWeights(ctx, http.StatusOK, wc)
}

func (api *weightsApi) reset(ctx echo.Context) error {
	wc, err := api.svc.Reset(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "resetting weights")
	}
	return respondWeights(ctx, http.StatusOK, wc)
}

func (api *weightsApi) addComponent(ctx echo.Context) error {
	var data grading.NewComponent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComponent")
	}

	wc, err := api.svc.AddComponent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding component")
	}
	return respondWeights(ctx, http.StatusCreated, wc)
}

func (api *weightsApi) removeComponent(ctx echo.Context) error {
	wc, err := api.svc.RemoveComponent(ctx.Request().Context(), ctx.Param("name"))
	if err != nil {
		return errors.Wrap(err, "removing component")
	}
	return respondWeights(ctx, http.StatusOK, wc)
}
