package grading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

var (
	// errors
	ErrComponentExists   = errors.New("a component with this name already exists")
	ErrComponentNotFound = errors.New("component not found")
	ErrDefaultComponent  = errors.New("default components cannot be deleted; set their weight to 0 instead")
)

const (
	weightsCacheKey = "weights"
	weightsCacheTTL = 10 * time.Minute
)

type (
	Repository interface {
		// QueryWeights returns the configuration in insertion order.
		QueryWeights(ctx context.Context) (WeightConfig, error)
		// UpdateWeights sets the weight of every given (existing) component.
		UpdateWeights(ctx context.Context, weights WeightConfig) error
		// AddComponent returns ErrComponentExists if the name is taken.
		AddComponent(ctx context.Context, weight Weight) error
		// DeleteComponent returns ErrComponentNotFound if nothing was deleted.
		DeleteComponent(ctx context.Context, component string) error
		// ReplaceWeights drops the whole configuration and inserts weights.
		ReplaceWeights(ctx context.Context, weights WeightConfig) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		cache    *cache.Cache
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
		cache:    cache.New(weightsCacheTTL, 2*weightsCacheTTL),
	}
}

// Invalidate drops the cached configuration, eg. after the tables were modified directly.
func (svc *Service) Invalidate() {
	svc.cache.Delete(weightsCacheKey)
}

// Weights returns the current configuration.
func (svc *Service) Weights(ctx context.Context) (WeightConfig, error) {
	if cached, ok := svc.cache.Get(weightsCacheKey); ok {
		return append(WeightConfig(nil), cached.(WeightConfig)...), nil
	}
	weights, err := svc.repo.QueryWeights(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying weights")
	}
	svc.cache.Set(weightsCacheKey, weights, cache.DefaultExpiration)
	return append(WeightConfig(nil), weights...), nil
}

// HasComponent reports whether component is configured.
func (svc *Service) HasComponent(ctx context.Context, component string) (bool, error) {
	weights, err := svc.Weights(ctx)
	if err != nil {
		return false, err
	}
	return weights.Has(component), nil
}

// Save updates the weights of existing components. The resulting configuration must add up
// to 100%.
func (svc *Service) Save(ctx context.Context, sw SaveWeights) (WeightConfig, error) {
	sw.clean()
	// the total is checked on the merged configuration; the payload may be partial
	for _, w := range sw.Weights {
		if err := svc.validate.Struct(w); err != nil {
			return nil, err
		}
	}

	current, err := svc.Weights(ctx)
	if err != nil {
		return nil, err
	}
	updates := make(map[string]float64, len(sw.Weights))
	for _, w := range sw.Weights {
		if !current.Has(w.Component) {
			return nil, core.NewValidationError(ErrComponentNotFound, core.FieldError{
				Field: "weights",
				Error: fmt.Sprintf("unknown component %q", w.Component),
			})
		}
		updates[w.Component] = w.Weight
	}

	merged := make(WeightConfig, 0, len(current))
	for _, w := range current {
		if weight, ok := updates[w.Component]; ok {
			w.Weight = weight
		}
		merged = append(merged, w)
	}
	if err = svc.validate.Struct(SaveWeights{Weights: merged}); err != nil {
		return nil, err
	}

	if err = svc.repo.UpdateWeights(ctx, sw.Weights); err != nil {
		return nil, pkgerrors.Wrap(err, "updating weights")
	}
	svc.Invalidate()
	return svc.Weights(ctx)
}

// AddComponent appends a custom component. The total is not checked: weights are expected to
// be rebalanced with Save afterwards.
func (svc *Service) AddComponent(ctx context.Context, nc NewComponent) (WeightConfig, error) {
	nc.Component = core.CleanString(nc.Component)
	if err := svc.validate.Struct(nc); err != nil {
		return nil, err
	}

	err := svc.repo.AddComponent(ctx, Weight{Component: nc.Component, Weight: nc.Weight})
	svc.Invalidate()
	if err != nil {
		if pkgerrors.Cause(err) == ErrComponentExists {
			return nil, core.NewFieldError("component", ErrComponentExists)
		}
		return nil, pkgerrors.Wrap(err, "adding component")
	}
	return svc.Weights(ctx)
}

// RemoveComponent deletes a custom component.
func (svc *Service) RemoveComponent(ctx context.Context, component string) (WeightConfig, error) {
	component = core.CleanString(component)
	if IsDefaultComponent(component) {
		return nil, core.NewFieldError("component", ErrDefaultComponent)
	}

	err := svc.repo.DeleteComponent(ctx, component)
	svc.Invalidate()
	if err != nil {
		if pkgerrors.Cause(err) == ErrComponentNotFound {
			return nil, ErrComponentNotFound
		}
		return nil, pkgerrors.Wrap(err, "deleting component")
	}
	return svc.Weights(ctx)
}

// Reset restores the default configuration, dropping custom components.
func (svc *Service) Reset(ctx context.Context) (WeightConfig, error) {
	err := svc.repo.ReplaceWeights(ctx, DefaultWeights())
	svc.Invalidate()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "resetting weights")
	}
	return svc.Weights(ctx)
}

// Replace swaps the whole configuration (eg. loaded from a file). Default components must be
// present and the total must add up to 100%.
func (svc *Service) Replace(ctx context.Context, sw SaveWeights) (WeightConfig, error) {
	sw.clean()
	if err := svc.validate.Struct(sw); err != nil {
		return nil, err
	}
	for _, def := range DefaultWeights() {
		if !sw.Weights.Has(def.Component) {
			return nil, core.NewValidationError(nil, core.FieldError{
				Field: "weights",
				Error: fmt.Sprintf("default component %q is missing", def.Component),
			})
		}
	}

	err := svc.repo.ReplaceWeights(ctx, sw.Weights)
	svc.Invalidate()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "replacing weights")
	}
	return svc.Weights(ctx)
}
