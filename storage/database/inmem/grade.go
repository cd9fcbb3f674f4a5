package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/grading"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateEntry(_ context.Context, e grade.Entry) (grade.Entry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.gradePK++
	e.ID = repo.db.gradePK
	e.StudentName = ""
	repo.db.grades[e.ID] = e
	return e, nil
}

func (repo *gradeRepository) QueryEntries(_ context.Context, filter grade.QueryFilter) ([]grade.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]grade.Entry, 0)
	for _, e := range repo.db.grades {
		if (filter.StudentID != "" && e.StudentID != filter.StudentID) || (filter.Type != "" && e.Type != filter.Type) {
			continue
		}
		s, ok := repo.db.students[e.StudentID]
		if !ok {
			continue // joined on students
		}
		e.StudentName = s.Name
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		if entries[i].StudentName != entries[j].StudentName {
			return entries[i].StudentName < entries[j].StudentName
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (repo *gradeRepository) DeleteEntry(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.grades[id]; !ok {
		return grade.ErrNotFound
	}
	delete(repo.db.grades, id)
	return nil
}

func (repo *gradeRepository) AveragesByType(_ context.Context, studentID string) (map[string]float64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var scores []grading.Score
	for _, e := range repo.db.grades {
		if e.StudentID == studentID {
			scores = append(scores, grading.Score{Type: e.Type, Score: e.Score, MaxScore: e.MaxScore})
		}
	}
	return grading.AverageByType(scores), nil
}
