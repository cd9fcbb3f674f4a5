package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[s.ID]; ok {
		return student.Student{}, student.ErrExists
	}
	repo.db.students[s.ID] = s
	return s, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) StudentExists(_ context.Context, id string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	_, ok := repo.db.students[id]
	return ok, nil
}

func matches(s student.Student, filter student.QueryFilter) bool {
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(s.ID), search) &&
			!strings.Contains(strings.ToLower(s.Name), search) &&
			!strings.Contains(strings.ToLower(s.Email), search) {
			return false
		}
	}
	if filter.Course != "" && !strings.EqualFold(s.Course, filter.Course) {
		return false
	}
	return true
}

func field(s student.Student, name string) string {
	switch name {
	case student.OrderByName:
		return s.Name
	case student.OrderByCourse:
		return s.Course
	default:
		return s.ID
	}
}

func sortStudents(students []student.Student, ordering []core.DBOrdering) {
	sort.SliceStable(students, func(i, j int) bool {
		for _, ord := range ordering {
			a, b := field(students[i], ord.Field), field(students[j], ord.Field)
			if a == b {
				continue
			}
			if ord.Ascending {
				return a < b
			}
			return a > b
		}
		return students[i].ID < students[j].ID
	})
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter student.QueryFilter, ordering ...core.DBOrdering) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		if matches(s, filter) {
			students = append(students, s)
		}
	}
	sortStudents(students, ordering)
	return students, nil
}

func (repo *studentRepository) QueryStudentsWithAttendance(_ context.Context) ([]student.WithAttendance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		students = append(students, s)
	}
	sortStudents(students, student.DefaultOrdering)

	rows := make([]student.WithAttendance, 0, len(students))
	for _, s := range students {
		stats := repo.db.stats(s.ID)
		rows = append(rows, student.WithAttendance{Student: s, Total: stats.Total, Present: stats.Present})
	}
	return rows, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[s.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.students[s.ID] = s
	return s, nil
}

func (repo *studentRepository) DeleteStudents(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.students, id)
		for key := range repo.db.attendance {
			if key.studentID == id {
				delete(repo.db.attendance, key)
			}
		}
		for pk, e := range repo.db.grades {
			if e.StudentID == id {
				delete(repo.db.grades, pk)
			}
		}
	}
	return nil
}
