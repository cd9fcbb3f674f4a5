package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/storage/database"
)

type weightsRepository struct {
	db *sqlx.DB
}

var _ grading.Repository = (*weightsRepository)(nil) // interface compliance check

func NewWeightsRepository(db *sqlx.DB) *weightsRepository {
	return &weightsRepository{db: db}
}

func (repo weightsRepository) QueryWeights(ctx context.Context) (grading.WeightConfig, error) {
	var rows []struct {
		Component string  `db:"component"`
		Weight    float64 `db:"weight"`
	}
	if err := repo.db.SelectContext(ctx, &rows, "SELECT component, weight FROM grading_config ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "querying weights")
	}
	weights := make(grading.WeightConfig, 0, len(rows))
	for _, row := range rows {
		weights = append(weights, grading.Weight{Component: row.Component, Weight: row.Weight})
	}
	return weights, nil
}

func (repo weightsRepository) UpdateWeights(ctx context.Context, weights grading.WeightConfig) error {
	q := repo.db.Rebind("UPDATE grading_config SET weight = ? WHERE component = ?")
	return database.Transact(ctx, repo.db, func(tx *sqlx.Tx) error {
		for _, w := range weights {
			if _, err := tx.ExecContext(ctx, q, w.Weight, w.Component); err != nil {
				return errors.Wrap(err, "updating weight")
			}
		}
		return nil
	})
}

func (repo weightsRepository) AddComponent(ctx context.Context, w grading.Weight) error {
	return database.Transact(ctx, repo.db, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, tx.Rebind("SELECT COUNT(*) FROM grading_config WHERE component = ?"), w.Component); err != nil {
			return errors.Wrap(err, "checking component")
		}
		if n > 0 {
			return grading.ErrComponentExists
		}
		return database.InsertWeights(ctx, tx, grading.WeightConfig{w})
	})
}

func (repo weightsRepository) DeleteComponent(ctx context.Context, component string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM grading_config WHERE component = ?"), component)
	if err != nil {
		return errors.Wrap(err, "deleting component")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting component")
	}
	if n == 0 {
		return grading.ErrComponentNotFound
	}
	return nil
}

func (repo weightsRepository) ReplaceWeights(ctx context.Context, weights grading.WeightConfig) error {
	return database.Transact(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM grading_config"); err != nil {
			return errors.Wrap(err, "clearing weights")
		}
		return database.InsertWeights(ctx, tx, weights)
	})
}
