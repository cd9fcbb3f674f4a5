package student

import "github.com/trezcool/gradebook/core"

// Orderable fields
const (
	OrderByID     = "student_id"
	OrderByName   = "name"
	OrderByCourse = "course"
)

var (
	OrderableFields = []string{OrderByID, OrderByName, OrderByCourse}
	DefaultOrdering = []core.DBOrdering{{Field: OrderByName, Ascending: true}}
)

type Student struct {
	ID     string `json:"student_id"`
	Name   string `json:"name"`
	Course string `json:"course"`
	Email  string `json:"email"`
}

// WithAttendance is a roster row carrying the student's attendance counters.
type WithAttendance struct {
	Student
	Total   int `json:"total_sessions"`
	Present int `json:"present"`
}

func (s WithAttendance) Percentage() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Present) / float64(s.Total) * 100
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	ID     string `json:"student_id" validate:"required,notblank,studentid,max=32"`
	Name   string `json:"name" validate:"required,notblank,max=128"`
	Course string `json:"course" validate:"omitempty,max=128"`
	Email  string `json:"email" validate:"omitempty,email"`
}

func (ns *NewStudent) clean() {
	ns.ID = core.CleanString(ns.ID)
	ns.Name = core.CleanString(ns.Name)
	ns.Course = core.CleanString(ns.Course)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Blank fields keep their current value.
type UpdateStudent struct {
	Name   string `json:"name" validate:"omitempty,max=128"`
	Course string `json:"course" validate:"omitempty,max=128"`
	Email  string `json:"email" validate:"omitempty,email"`
}

func (us *UpdateStudent) merge(orig Student) Student {
	s := orig
	if name := core.CleanString(us.Name); name != "" {
		s.Name = name
	}
	if course := core.CleanString(us.Course); course != "" {
		s.Course = course
	}
	if email := core.CleanString(us.Email, true /* lower */); email != "" {
		s.Email = email
	}
	return s
}

type QueryFilter struct {
	// Search does a case-insensitive match on one of Student.ID, Student.Name or Student.Email.
	Search string `query:"search"`
	Course string `query:"course"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Course == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Course = core.CleanString(qf.Course)
}
