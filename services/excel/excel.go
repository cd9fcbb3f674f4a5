// Package excelsvc exports the gradebook to xlsx workbooks and imports students, grades and
// attendance from them.
package excelsvc

import (
	"context"
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/student"
)

// Kind is what a workbook holds.
type Kind string

// Kinds
const (
	KindStudents   Kind = "students"
	KindGrades     Kind = "grades"
	KindAttendance Kind = "attendance"
	KindReport     Kind = "report"
)

// ParseKind returns the kind named s.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(core.CleanString(s, true /* lower */)); k {
	case KindStudents, KindGrades, KindAttendance, KindReport:
		return k, nil
	}
	return "", fmt.Errorf("unknown spreadsheet kind %q", s)
}

// Importable reports whether workbooks of this kind can be imported.
func (k Kind) Importable() bool {
	return k == KindStudents || k == KindGrades || k == KindAttendance
}

// FileName is the default name of an exported workbook.
func (k Kind) FileName() string {
	return string(k) + ".xlsx"
}

type (
	StudentStore interface {
		Create(ctx context.Context, ns student.NewStudent) (student.Student, error)
		QueryWithAttendance(ctx context.Context) ([]student.WithAttendance, error)
	}

	GradeStore interface {
		Add(ctx context.Context, ne grade.NewEntry) (grade.Entry, error)
		Query(ctx context.Context, filter grade.QueryFilter) ([]grade.Entry, error)
	}

	AttendanceStore interface {
		Mark(ctx context.Context, ma attendance.MarkAttendance) (attendance.Record, error)
		Query(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error)
	}

	ReportBuilder interface {
		Build(ctx context.Context) (report.Report, error)
	}

	Service struct {
		students   StudentStore
		grades     GradeStore
		attendance AttendanceStore
		reports    ReportBuilder
		translator ut.Translator
		appName    string
	}
)

func NewService(
	students StudentStore,
	grades GradeStore,
	attendance AttendanceStore,
	reports ReportBuilder,
	translator ut.Translator,
	conf *core.Config,
) *Service {
	return &Service{
		students:   students,
		grades:     grades,
		attendance: attendance,
		reports:    reports,
		translator: translator,
		appName:    conf.AppName,
	}
}

// ImportResult tells how many rows were imported and why the others were skipped.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

func (res *ImportResult) skip(row int, format string, args ...interface{}) {
	res.Skipped++
	res.Errors = append(res.Errors, fmt.Sprintf("Row %d: ", row)+fmt.Sprintf(format, args...))
}

// Message is a one line summary of the import.
func (res ImportResult) Message(kind Kind) string {
	what := string(kind)
	if kind == KindAttendance {
		what = "attendance records"
	}
	return fmt.Sprintf("Successfully imported %d %s", res.Imported, what)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "; ")
}
