package excelsvc

import (
	"context"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/student"
)

const (
	maxColWidth     = 50
	timestampLayout = "2006-01-02 15:04:05"

	// header colours
	studentsColor   = "0066CC"
	gradesColor     = "059669"
	attendanceColor = "7C3AED"
	reportColor     = "DC2626"
)

var (
	thinBorder = []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	statusStyles = map[attendance.Status]struct{ fill, font string }{
		attendance.StatusPresent: {fill: "D4EDDA", font: "155724"},
		attendance.StatusAbsent:  {fill: "F8D7DA", font: "721C24"},
	}

	nowFunc = time.Now // mockable
)

// table writes a styled header row then data rows to a sheet, tracking column widths.
type table struct {
	f       *excelize.File
	sheet   string
	headers []string
	widths  []int
	rows    int
}

func newTable(f *excelize.File, sheet, color string, headers ...string) (*table, error) {
	t := &table{f: f, sheet: sheet, headers: headers, widths: make([]int, len(headers))}

	style, err := f.NewStyle(&excelize.Style{
		Border:    thinBorder,
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	if err = t.setRow(1, toValues(headers)); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err = f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return nil, err
	}
	return t, nil
}

func toValues(ss []string) []interface{} {
	vals := make([]interface{}, len(ss))
	for i, s := range ss {
		vals[i] = s
	}
	return vals
}

func (t *table) setRow(row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	for i, v := range values {
		if i < len(t.widths) {
			if n := utf8.RuneCountInString(fmt.Sprint(v)); n > t.widths[i] {
				t.widths[i] = n
			}
		}
	}
	return t.f.SetSheetRow(t.sheet, cell, &values)
}

// append writes a data row and returns its sheet row number.
func (t *table) append(values ...interface{}) (int, error) {
	t.rows++
	row := t.rows + 1
	return row, t.setRow(row, values)
}

// finish borders the data cells, centers the given (1-based) columns and sizes every column.
func (t *table) finish(centered ...int) error {
	left, err := t.f.NewStyle(&excelize.Style{
		Border:    thinBorder,
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	center, err := t.f.NewStyle(&excelize.Style{
		Border:    thinBorder,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	if t.rows > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.headers), t.rows+1)
		if err = t.f.SetCellStyle(t.sheet, "A2", last, left); err != nil {
			return err
		}
		for _, col := range centered {
			top, _ := excelize.CoordinatesToCellName(col, 2)
			bottom, _ := excelize.CoordinatesToCellName(col, t.rows+1)
			if err = t.f.SetCellStyle(t.sheet, top, bottom, center); err != nil {
				return err
			}
		}
	}

	for i, w := range t.widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		width := w + 2
		if width > maxColWidth {
			width = maxColWidth
		}
		if err = t.f.SetColWidth(t.sheet, name, name, float64(width)); err != nil {
			return err
		}
	}
	return nil
}

// writeInfo writes label/value pairs to a new sheet, labels in bold.
func writeInfo(f *excelize.File, sheet string, pairs [][2]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	for i, p := range pairs {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{p[0], p[1]}); err != nil {
			return err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if len(pairs) > 0 {
		last, _ := excelize.CoordinatesToCellName(1, len(pairs))
		if err = f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "B", 24)
}

// newWorkbook returns a workbook whose first sheet is named sheet.
func newWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func save(f *excelize.File, w io.Writer) error {
	if err := f.Write(w); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "writing workbook")
	}
	return f.Close()
}

// Export writes the workbook of kind to w.
func (svc *Service) Export(ctx context.Context, kind Kind, w io.Writer) error {
	switch kind {
	case KindStudents:
		students, err := svc.students.QueryWithAttendance(ctx)
		if err != nil {
			return errors.Wrap(err, "querying students")
		}
		return svc.ExportStudents(w, students)
	case KindGrades:
		entries, err := svc.grades.Query(ctx, grade.QueryFilter{})
		if err != nil {
			return errors.Wrap(err, "querying grades")
		}
		return ExportGrades(w, entries)
	case KindAttendance:
		recs, err := svc.attendance.Query(ctx, attendance.QueryFilter{})
		if err != nil {
			return errors.Wrap(err, "querying attendance")
		}
		return ExportAttendance(w, recs)
	case KindReport:
		rep, err := svc.reports.Build(ctx)
		if err != nil {
			return errors.Wrap(err, "building report")
		}
		return ExportReport(w, rep)
	}
	return fmt.Errorf("unknown spreadsheet kind %q", kind)
}

// ExportStudents writes the roster with attendance counters, plus an "Export Info" sheet.
func (svc *Service) ExportStudents(w io.Writer, students []student.WithAttendance) error {
	const sheet = "Students"
	f, err := newWorkbook(sheet)
	if err != nil {
		return err
	}
	err = func() error {
		t, err := newTable(f, sheet, studentsColor,
			"Student ID", "Name", "Course", "Email", "Total Sessions", "Present", "Attendance %")
		if err != nil {
			return err
		}
		for _, s := range students {
			if _, err = t.append(s.ID, s.Name, s.Course, s.Email, s.Total, s.Present, percent(s.Percentage())); err != nil {
				return err
			}
		}
		if err = t.finish(5, 6, 7); err != nil {
			return err
		}
		return writeInfo(f, "Export Info", [][2]interface{}{
			{"Export Date", nowFunc().Format(timestampLayout)},
			{"Total Students", len(students)},
			{"Generated By", svc.appName},
		})
	}()
	if err != nil {
		_ = f.Close()
		return errors.Wrap(err, "exporting students")
	}
	return save(f, w)
}

// ExportGrades writes every grade entry.
func ExportGrades(w io.Writer, entries []grade.Entry) error {
	const sheet = "Grades"
	f, err := newWorkbook(sheet)
	if err != nil {
		return err
	}
	err = func() error {
		t, err := newTable(f, sheet, gradesColor,
			"Student ID", "Name", "Assessment Type", "Assessment Name", "Score", "Max Score", "Percentage", "Date")
		if err != nil {
			return err
		}
		for _, e := range entries {
			if _, err = t.append(e.StudentID, e.StudentName, e.Type, e.Name, e.Score, e.MaxScore, percent(e.Percentage()), e.Date); err != nil {
				return err
			}
		}
		return t.finish(5, 6, 7)
	}()
	if err != nil {
		_ = f.Close()
		return errors.Wrap(err, "exporting grades")
	}
	return save(f, w)
}

// ExportAttendance writes attendance records as given (latest first), colouring Present and
// Absent statuses.
func ExportAttendance(w io.Writer, recs []attendance.Record) error {
	const sheet = "Attendance Records"
	f, err := newWorkbook(sheet)
	if err != nil {
		return err
	}
	err = func() error {
		t, err := newTable(f, sheet, attendanceColor, "Date", "Student ID", "Student Name", "Course", "Status")
		if err != nil {
			return err
		}
		statusRows := make(map[attendance.Status][]int)
		for _, r := range recs {
			row, err := t.append(r.Date, r.StudentID, r.StudentName, r.Course, string(r.Status))
			if err != nil {
				return err
			}
			statusRows[r.Status] = append(statusRows[r.Status], row)
		}
		if err = t.finish(); err != nil {
			return err
		}

		for status, colors := range statusStyles {
			style, err := f.NewStyle(&excelize.Style{
				Border:    thinBorder,
				Fill:      excelize.Fill{Type: "pattern", Color: []string{colors.fill}, Pattern: 1},
				Font:      &excelize.Font{Bold: true, Color: colors.font},
				Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
			})
			if err != nil {
				return err
			}
			for _, row := range statusRows[status] {
				cell, _ := excelize.CoordinatesToCellName(5, row)
				if err = f.SetCellStyle(sheet, cell, cell, style); err != nil {
					return err
				}
			}
		}
		return nil
	}()
	if err != nil {
		_ = f.Close()
		return errors.Wrap(err, "exporting attendance")
	}
	return save(f, w)
}

// ExportReport writes one row per student with a column per component, plus a "Summary" sheet.
func ExportReport(w io.Writer, rep report.Report) error {
	const sheet = "Grade Report"
	f, err := newWorkbook(sheet)
	if err != nil {
		return err
	}
	err = func() error {
		headers := append([]string{"Student ID", "Name"}, rep.Components...)
		headers = append(headers, "Final %", "Grade Point")
		t, err := newTable(f, sheet, reportColor, headers...)
		if err != nil {
			return err
		}
		for _, r := range rep.Rows {
			values := []interface{}{r.StudentID, r.Name}
			for _, c := range rep.Components {
				values = append(values, percent(r.Percentage(c)))
			}
			values = append(values, percent(r.Final), r.GradeLabel)
			if _, err = t.append(values...); err != nil {
				return err
			}
		}
		centered := make([]int, 0, len(rep.Components)+2)
		for col := 3; col <= len(headers); col++ {
			centered = append(centered, col)
		}
		if err = t.finish(centered...); err != nil {
			return err
		}

		sum := rep.Summary
		pairs := [][2]interface{}{
			{"Report Generated", rep.GeneratedAt.Format(timestampLayout)},
			{"Total Students", sum.Count},
			{"Average Final", percent(sum.Mean)},
			{"Passing", sum.Passing},
			{"Pass Rate", percent(sum.PassRate * 100)},
		}
		for _, b := range sum.Buckets() {
			pairs = append(pairs, [2]interface{}{"Grade " + b.Label, b.Count})
		}
		return writeInfo(f, "Summary", pairs)
	}()
	if err != nil {
		_ = f.Close()
		return errors.Wrap(err, "exporting report")
	}
	return save(f, w)
}
