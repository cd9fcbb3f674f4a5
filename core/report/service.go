package report

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/student"
)

type (
	Roster interface {
		Get(ctx context.Context, id string) (student.Student, error)
		Query(ctx context.Context, filter student.QueryFilter, ordering ...core.DBOrdering) ([]student.Student, error)
	}

	WeightSource interface {
		Weights(ctx context.Context) (grading.WeightConfig, error)
	}

	Service struct {
		roster  Roster
		src     DataSource
		weights WeightSource
	}
)

// nowFunc is mockable
var nowFunc = time.Now

func NewService(roster Roster, src DataSource, weights WeightSource) *Service {
	return &Service{roster: roster, src: src, weights: weights}
}

// Build generates the report of the whole roster, by name.
func (svc *Service) Build(ctx context.Context) (Report, error) {
	weights, err := svc.weights.Weights(ctx)
	if err != nil {
		return Report{}, errors.Wrap(err, "loading weights")
	}
	students, err := svc.roster.Query(ctx, student.QueryFilter{}, student.DefaultOrdering...)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying roster")
	}

	rows, err := Generate(ctx, students, svc.src, weights)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Components:  weights.Components(),
		Rows:        rows,
		Summary:     Summarize(rows),
		GeneratedAt: nowFunc(),
	}, nil
}

// Student computes the grade of a single student.
func (svc *Service) Student(ctx context.Context, id string) (Row, error) {
	s, err := svc.roster.Get(ctx, id)
	if err != nil {
		return Row{}, err
	}
	weights, err := svc.weights.Weights(ctx)
	if err != nil {
		return Row{}, errors.Wrap(err, "loading weights")
	}
	return compute(ctx, s, svc.src, weights)
}
