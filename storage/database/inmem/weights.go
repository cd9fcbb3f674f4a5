package inmemdb

import (
	"context"

	"github.com/trezcool/gradebook/core/grading"
)

type weightsRepository struct {
	db *DB
}

var _ grading.Repository = (*weightsRepository)(nil) // interface compliance check

func NewWeightsRepository(db *DB) *weightsRepository {
	return &weightsRepository{db: db}
}

func (repo *weightsRepository) QueryWeights(_ context.Context) (grading.WeightConfig, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append(grading.WeightConfig(nil), repo.db.weights...), nil
}

func (repo *weightsRepository) UpdateWeights(_ context.Context, weights grading.WeightConfig) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, w := range weights {
		for i := range repo.db.weights {
			if repo.db.weights[i].Component == w.Component {
				repo.db.weights[i].Weight = w.Weight
			}
		}
	}
	return nil
}

func (repo *weightsRepository) AddComponent(_ context.Context, w grading.Weight) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.db.weights.Has(w.Component) {
		return grading.ErrComponentExists
	}
	repo.db.weights = append(repo.db.weights, w)
	return nil
}

func (repo *weightsRepository) DeleteComponent(_ context.Context, component string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i, w := range repo.db.weights {
		if w.Component == component {
			repo.db.weights = append(repo.db.weights[:i:i], repo.db.weights[i+1:]...)
			return nil
		}
	}
	return grading.ErrComponentNotFound
}

func (repo *weightsRepository) ReplaceWeights(_ context.Context, weights grading.WeightConfig) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.weights = append(grading.WeightConfig(nil), weights...)
	return nil
}
