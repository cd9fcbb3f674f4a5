package student

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
	ErrExists   = errors.New("a student with this ID already exists")
)

type (
	Repository interface {
		// CreateStudent returns ErrExists if the ID is taken.
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		StudentExists(ctx context.Context, id string) (bool, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		QueryStudents(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Student, error)
		// QueryStudentsWithAttendance returns the whole roster, name ascending.
		QueryStudentsWithAttendance(ctx context.Context) ([]WithAttendance, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		// DeleteStudents also deletes the students' attendance and grade records.
		DeleteStudents(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func notFoundOrErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	ns.clean()
	if err := svc.validate.Struct(ns); err != nil {
		return Student{}, err
	}

	s, err := svc.repo.CreateStudent(ctx, Student{
		ID:     ns.ID,
		Name:   ns.Name,
		Course: ns.Course,
		Email:  ns.Email,
	})
	if errors.Is(err, ErrExists) {
		return Student{}, core.NewFieldError("student_id", ErrExists)
	}
	return s, err
}

func (svc *Service) Get(ctx context.Context, id string) (Student, error) {
	s, err := svc.repo.GetStudent(ctx, core.CleanString(id))
	return s, notFoundOrErr(err)
}

func (svc *Service) Exists(ctx context.Context, id string) (bool, error) {
	return svc.repo.StudentExists(ctx, core.CleanString(id))
}

// Query lists students matching filter, by name unless an ordering is given.
func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Student, error) {
	filter.Clean()
	if len(ordering) == 0 {
		ordering = DefaultOrdering
	}
	return svc.repo.QueryStudents(ctx, filter, ordering...)
}

func (svc *Service) QueryWithAttendance(ctx context.Context) ([]WithAttendance, error) {
	return svc.repo.QueryStudentsWithAttendance(ctx)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	orig, err := svc.Get(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if err = svc.validate.Struct(us); err != nil {
		return Student{}, err
	}
	s, err := svc.repo.UpdateStudent(ctx, us.merge(orig))
	return s, notFoundOrErr(err)
}

// Delete removes students with their attendance and grades. Unknown IDs are ignored.
func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		cleaned = append(cleaned, core.CleanString(id))
	}
	return svc.repo.DeleteStudents(ctx, cleaned...)
}
