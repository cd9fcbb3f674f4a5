package grade

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/student"
)

var (
	// errors
	ErrNotFound       = errors.New("grade not found")
	ErrUnknownType    = errors.New("assessment type is not a configured component")
	ErrAttendanceType = errors.New("attendance is computed from attendance records")
)

type (
	Repository interface {
		CreateEntry(ctx context.Context, e Entry) (Entry, error)
		// QueryEntries returns entries by date descending, then student name.
		QueryEntries(ctx context.Context, filter QueryFilter) ([]Entry, error)
		// DeleteEntry returns ErrNotFound if nothing was deleted.
		DeleteEntry(ctx context.Context, id int) error
		// AveragesByType averages the percentage of the student's entries per assessment type.
		// Types without entries are absent.
		AveragesByType(ctx context.Context, studentID string) (map[string]float64, error)
	}

	StudentChecker interface {
		Exists(ctx context.Context, id string) (bool, error)
	}

	ComponentChecker interface {
		HasComponent(ctx context.Context, component string) (bool, error)
	}

	Service struct {
		repo       Repository
		students   StudentChecker
		components ComponentChecker
		validate   *validator.Validate
	}
)

func NewService(repo Repository, students StudentChecker, components ComponentChecker, validate *validator.Validate) *Service {
	return &Service{repo: repo, students: students, components: components, validate: validate}
}

// Add records a grade for an enrolled student, in a configured (non attendance) component.
func (svc *Service) Add(ctx context.Context, ne NewEntry) (Entry, error) {
	ne.clean()
	if err := svc.validate.Struct(ne); err != nil {
		return Entry{}, err
	}

	ok, err := svc.students.Exists(ctx, ne.StudentID)
	if err != nil {
		return Entry{}, pkgerrors.Wrap(err, "checking student")
	}
	if !ok {
		return Entry{}, core.NewFieldError("student_id", student.ErrNotFound)
	}

	if ne.Type == grading.ComponentAttendance {
		return Entry{}, core.NewFieldError("assessment_type", ErrAttendanceType)
	}
	if ok, err = svc.components.HasComponent(ctx, ne.Type); err != nil {
		return Entry{}, pkgerrors.Wrap(err, "checking component")
	}
	if !ok {
		return Entry{}, core.NewValidationError(ErrUnknownType, core.FieldError{
			Field: "assessment_type",
			Error: fmt.Sprintf("%q is not a configured component", ne.Type),
		})
	}

	return svc.repo.CreateEntry(ctx, Entry{
		StudentID: ne.StudentID,
		Type:      ne.Type,
		Name:      ne.Name,
		Score:     ne.Score,
		MaxScore:  ne.MaxScore,
		Date:      ne.Date,
	})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	filter.Clean()
	return svc.repo.QueryEntries(ctx, filter)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if err := svc.repo.DeleteEntry(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (svc *Service) AveragesByType(ctx context.Context, studentID string) (map[string]float64, error) {
	return svc.repo.AveragesByType(ctx, core.CleanString(studentID))
}
