// Package inmemdb keeps the repositories in process memory. Nothing survives the process; it
// backs the service tests.
package inmemdb

import (
	"sync"

	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/student"
)

type attendanceKey struct {
	studentID string
	date      string
}

// DB guards every table with one lock so that cascading deletes stay consistent.
type DB struct {
	mutex sync.RWMutex

	students   map[string]student.Student
	attendance map[attendanceKey]attendance.Record
	grades     map[int]grade.Entry
	weights    grading.WeightConfig

	attendancePK int
	gradePK      int
}

// Open returns an empty database seeded with the default grading configuration.
func Open() *DB {
	return &DB{
		students:   make(map[string]student.Student),
		attendance: make(map[attendanceKey]attendance.Record),
		grades:     make(map[int]grade.Entry),
		weights:    grading.DefaultWeights(),
	}
}
