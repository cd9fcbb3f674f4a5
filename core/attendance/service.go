package attendance

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/student"
)

var (
	// errors
	ErrInvalidDay = errors.New("day must be one of Monday to Saturday")
)

type (
	Repository interface {
		// UpsertAttendance inserts the record or replaces the status of the existing
		// (student, date) record.
		UpsertAttendance(ctx context.Context, rec Record) (Record, error)
		// UpsertAttendances upserts every record atomically.
		UpsertAttendances(ctx context.Context, recs []Record) error
		// QueryAttendance returns records by date descending, then student name.
		QueryAttendance(ctx context.Context, filter QueryFilter) ([]Record, error)
		// AttendanceStats counts every record of the student, and the Present ones.
		AttendanceStats(ctx context.Context, studentID string) (Stats, error)
	}

	// Students is the roster as seen by attendance marking.
	Students interface {
		Exists(ctx context.Context, id string) (bool, error)
		Query(ctx context.Context, filter student.QueryFilter, ordering ...core.DBOrdering) ([]student.Student, error)
	}

	Service struct {
		repo     Repository
		students Students
		validate *validator.Validate
	}
)

func NewService(repo Repository, students Students, validate *validator.Validate) *Service {
	return &Service{repo: repo, students: students, validate: validate}
}

func (svc *Service) checkStudent(ctx context.Context, id string) error {
	ok, err := svc.students.Exists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(err, "checking student")
	}
	if !ok {
		return core.NewFieldError("student_id", student.ErrNotFound)
	}
	return nil
}

// Mark sets the attendance of a student on a date, replacing any previous status.
func (svc *Service) Mark(ctx context.Context, ma MarkAttendance) (Record, error) {
	ma.clean()
	if err := svc.validate.Struct(ma); err != nil {
		return Record{}, err
	}
	if err := svc.checkStudent(ctx, ma.StudentID); err != nil {
		return Record{}, err
	}
	return svc.repo.UpsertAttendance(ctx, Record{StudentID: ma.StudentID, Date: ma.Date, Status: ma.Status})
}

// MarkRoster marks every student of the roster on mr.Date: Present if listed, Absent otherwise.
// It returns the number of records written.
func (svc *Service) MarkRoster(ctx context.Context, mr MarkRoster) (int, error) {
	mr.Date = core.CleanString(mr.Date)
	if mr.Date == "" {
		mr.Date = core.FormatDate(core.Today())
	}
	if err := svc.validate.Struct(mr); err != nil {
		return 0, err
	}

	roster, err := svc.students.Query(ctx, student.QueryFilter{})
	if err != nil {
		return 0, pkgerrors.Wrap(err, "querying roster")
	}
	present := make(map[string]bool, len(mr.Present))
	for _, id := range mr.Present {
		present[core.CleanString(id)] = true
	}

	recs := make([]Record, 0, len(roster))
	for _, s := range roster {
		status := StatusAbsent
		if present[s.ID] {
			status = StatusPresent
			delete(present, s.ID)
		}
		recs = append(recs, Record{StudentID: s.ID, Date: mr.Date, Status: status})
	}
	if len(present) > 0 {
		unknown := make([]string, 0, len(present))
		for id := range present {
			unknown = append(unknown, id)
		}
		sort.Strings(unknown)
		return 0, core.NewValidationError(student.ErrNotFound, core.FieldError{
			Field: "present",
			Error: "unknown students: " + strings.Join(unknown, ", "),
		})
	}

	if err = svc.repo.UpsertAttendances(ctx, recs); err != nil {
		return 0, pkgerrors.Wrap(err, "marking roster")
	}
	return len(recs), nil
}

// Week returns the Monday to Saturday attendance of a student for the week containing ref.
func (svc *Service) Week(ctx context.Context, studentID string, ref time.Time) ([]Day, error) {
	studentID = core.CleanString(studentID)
	if err := svc.checkStudent(ctx, studentID); err != nil {
		return nil, err
	}

	monday := WeekStart(ref)
	saturday := monday.AddDate(0, 0, len(WeekDays)-1)
	recs, err := svc.repo.QueryAttendance(ctx, QueryFilter{
		StudentID: studentID,
		From:      core.FormatDate(monday),
		To:        core.FormatDate(saturday),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying week")
	}
	byDate := make(map[string]Status, len(recs))
	for _, r := range recs {
		byDate[r.Date] = r.Status
	}

	days := make([]Day, 0, len(WeekDays))
	for i, wd := range WeekDays {
		date := core.FormatDate(monday.AddDate(0, 0, i))
		status := byDate[date]
		days = append(days, Day{
			Weekday: wd,
			Name:    wd.String(),
			Date:    date,
			Status:  status,
			Present: status.Counts(),
		})
	}
	return days, nil
}

// MarkDay marks a student Present or Absent on one day of the week containing ref.
func (svc *Service) MarkDay(ctx context.Context, studentID string, day time.Weekday, present bool, ref time.Time) (Record, error) {
	if day == time.Sunday {
		return Record{}, core.NewFieldError("day", ErrInvalidDay)
	}
	status := StatusAbsent
	if present {
		status = StatusPresent
	}
	date := WeekStart(ref).AddDate(0, 0, int(day)-1)
	return svc.Mark(ctx, MarkAttendance{StudentID: studentID, Date: core.FormatDate(date), Status: status})
}

func (svc *Service) Stats(ctx context.Context, studentID string) (Stats, error) {
	return svc.repo.AttendanceStats(ctx, core.CleanString(studentID))
}

// Percentage returns present/total*100 for a student, 0 without records.
func (svc *Service) Percentage(ctx context.Context, studentID string) (float64, error) {
	stats, err := svc.Stats(ctx, studentID)
	if err != nil {
		return 0, err
	}
	return stats.Percentage(), nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Record, error) {
	filter.Clean()
	return svc.repo.QueryAttendance(ctx, filter)
}
