package excelsvc

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/student"
)

// HeaderSimilarity is the lowest difflib ratio for a header cell to match an expected column.
const HeaderSimilarity = 0.85

// Columns
const (
	colStudentID      = "Student ID"
	colName           = "Name"
	colCourse         = "Course"
	colEmail          = "Email"
	colAssessmentType = "Assessment Type"
	colAssessmentName = "Assessment Name"
	colScore          = "Score"
	colMaxScore       = "Max Score"
	colDate           = "Date"
	colStatus         = "Status"
)

var (
	// errors
	ErrMissingColumns = errors.New("missing required columns")
	ErrEmptyWorkbook  = errors.New("the workbook has no data")
	ErrBadWorkbook    = errors.New("not a valid xlsx workbook")
	ErrNotImportable  = errors.New("this kind of spreadsheet cannot be imported")

	errInvalidDate = errors.New("invalid date")

	dateLayouts = []string{
		core.DateLayout,
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006/01/02",
		"01/02/2006",
		"02-Jan-2006",
		"Jan 2, 2006",
	}
)

func normalizeHeader(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

// matchColumns maps every expected column to its index in header, -1 when absent. Header cells
// are compared case and space insensitively, then by similarity.
func matchColumns(header []string, expected ...string) map[string]int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
	}
	used := make(map[int]bool, len(header))
	cols := make(map[string]int, len(expected))

	for _, name := range expected {
		cols[name] = -1
		want := normalizeHeader(name)
		for i, h := range normalized {
			if h == want && !used[i] {
				cols[name] = i
				used[i] = true
				break
			}
		}
	}
	for _, name := range expected {
		if cols[name] >= 0 {
			continue
		}
		want := normalizeHeader(name)
		best, bestRatio := -1, HeaderSimilarity
		for i, h := range normalized {
			if used[i] || h == "" {
				continue
			}
			if ratio := similarity(want, h); ratio >= bestRatio {
				best, bestRatio = i, ratio
			}
		}
		if best >= 0 {
			cols[name] = best
			used[best] = true
		}
	}
	return cols
}

func checkRequired(cols map[string]int, required ...string) error {
	var missing []string
	for _, name := range required {
		if cols[name] < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// readRows returns the raw cell values of the first sheet.
func readRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrap(err, "reading rows")
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}
	return rows, nil
}

type sheetRow struct {
	num   int // as numbered in the sheet
	cells []string
	cols  map[string]int
}

func (r sheetRow) get(col string) string {
	idx, ok := r.cols[col]
	if !ok || idx < 0 || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[idx])
}

// anyBlank reports whether one of cols has no value.
func (r sheetRow) anyBlank(cols ...string) bool {
	for _, c := range cols {
		if r.get(c) == "" {
			return true
		}
	}
	return false
}

// scan reads the workbook, checks its header and calls fn for every data row.
func scan(r io.Reader, required, optional []string, fn func(row sheetRow) error) error {
	rows, err := readRows(r)
	if err != nil {
		return err
	}
	cols := matchColumns(rows[0], append(append([]string(nil), required...), optional...)...)
	if err = checkRequired(cols, required...); err != nil {
		return err
	}
	for i, cells := range rows[1:] {
		if err = fn(sheetRow{num: i + 2, cells: cells, cols: cols}); err != nil {
			return err
		}
	}
	return nil
}

// parseDate accepts the usual textual layouts and spreadsheet date serials.
func parseDate(s string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return core.FormatDate(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return core.FormatDate(t), nil
		}
	}
	return "", errInvalidDate
}

// describe turns a validation error into a row error message. ok is false for other errors.
func (svc *Service) describe(err error) (msg string, ok bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fldErrs := core.TranslateErrors(verrs, svc.translator)
		lines := make([]string, 0, len(fldErrs))
		for fld, e := range fldErrs {
			lines = append(lines, fld+": "+e)
		}
		sort.Strings(lines)
		return joinLines(lines), true
	}
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		lines := make([]string, 0, len(verr.Fields))
		for _, fe := range verr.Fields {
			lines = append(lines, fe.Error)
		}
		return joinLines(lines), true
	}
	return "", false
}

func isField(err error, fields ...string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		for _, f := range fields {
			if fe.Field() == f {
				return true
			}
		}
	}
	return false
}

// Import reads a workbook of kind from r. Invalid rows are skipped and reported in the result;
// storage failures abort the import.
func (svc *Service) Import(ctx context.Context, kind Kind, r io.Reader) (ImportResult, error) {
	switch kind {
	case KindStudents:
		return svc.ImportStudents(ctx, r)
	case KindGrades:
		return svc.ImportGrades(ctx, r)
	case KindAttendance:
		return svc.ImportAttendance(ctx, r)
	}
	return ImportResult{}, ErrNotImportable
}

// ImportStudents enrolls the students of the sheet. Existing IDs are skipped.
func (svc *Service) ImportStudents(ctx context.Context, r io.Reader) (ImportResult, error) {
	res := ImportResult{Errors: []string{}}
	err := scan(r, []string{colStudentID, colName}, []string{colCourse, colEmail}, func(row sheetRow) error {
		if row.anyBlank(colStudentID, colName) {
			return nil
		}
		id := row.get(colStudentID)
		_, err := svc.students.Create(ctx, student.NewStudent{
			ID:     id,
			Name:   row.get(colName),
			Course: row.get(colCourse),
			Email:  row.get(colEmail),
		})
		if err != nil {
			if errors.Is(err, student.ErrExists) {
				res.skip(row.num, "Student %s already exists", id)
				return nil
			}
			if msg, ok := svc.describe(err); ok {
				res.skip(row.num, "%s", msg)
				return nil
			}
			return errors.Wrapf(err, "row %d", row.num)
		}
		res.Imported++
		return nil
	})
	return res, err
}

// ImportGrades records the grades of the sheet. Date defaults to today.
func (svc *Service) ImportGrades(ctx context.Context, r io.Reader) (ImportResult, error) {
	res := ImportResult{Errors: []string{}}
	required := []string{colStudentID, colAssessmentType, colAssessmentName, colScore, colMaxScore}
	err := scan(r, required, []string{colDate}, func(row sheetRow) error {
		if row.anyBlank(colStudentID, colAssessmentType, colAssessmentName) {
			return nil
		}
		id, typ := row.get(colStudentID), row.get(colAssessmentType)

		score, err1 := strconv.ParseFloat(row.get(colScore), 64)
		maxScore, err2 := strconv.ParseFloat(row.get(colMaxScore), 64)
		if err1 != nil || err2 != nil {
			res.skip(row.num, "Invalid score values")
			return nil
		}
		var date string
		if raw := row.get(colDate); raw != "" {
			d, err := parseDate(raw)
			if err != nil {
				res.skip(row.num, "Invalid date format")
				return nil
			}
			date = d
		}

		_, err := svc.grades.Add(ctx, grade.NewEntry{
			StudentID: id,
			Type:      typ,
			Name:      row.get(colAssessmentName),
			Score:     score,
			MaxScore:  maxScore,
			Date:      date,
		})
		switch {
		case err == nil:
			res.Imported++
		case errors.Is(err, student.ErrNotFound):
			res.skip(row.num, "Student %s not found", id)
		case errors.Is(err, grade.ErrUnknownType), errors.Is(err, grade.ErrAttendanceType):
			res.skip(row.num, "Invalid assessment type '%s'", typ)
		case isField(err, "score", "max_score"):
			res.skip(row.num, "Invalid score range")
		default:
			msg, ok := svc.describe(err)
			if !ok {
				return errors.Wrapf(err, "row %d", row.num)
			}
			res.skip(row.num, "%s", msg)
		}
		return nil
	})
	return res, err
}

// ImportAttendance marks the attendance of the sheet, replacing existing statuses.
func (svc *Service) ImportAttendance(ctx context.Context, r io.Reader) (ImportResult, error) {
	res := ImportResult{Errors: []string{}}
	err := scan(r, []string{colStudentID, colDate, colStatus}, nil, func(row sheetRow) error {
		if row.anyBlank(colStudentID, colDate, colStatus) {
			return nil
		}
		id, rawStatus := row.get(colStudentID), row.get(colStatus)

		date, err := parseDate(row.get(colDate))
		if err != nil {
			res.skip(row.num, "Invalid date format")
			return nil
		}
		status, ok := attendance.ParseStatus(rawStatus)
		if !ok {
			res.skip(row.num, "Invalid status '%s'", rawStatus)
			return nil
		}

		_, err = svc.attendance.Mark(ctx, attendance.MarkAttendance{StudentID: id, Date: date, Status: status})
		switch {
		case err == nil:
			res.Imported++
		case errors.Is(err, student.ErrNotFound):
			res.skip(row.num, "Student %s not found", id)
		default:
			msg, ok := svc.describe(err)
			if !ok {
				return errors.Wrapf(err, "row %d", row.num)
			}
			res.skip(row.num, "%s", msg)
		}
		return nil
	})
	return res, err
}
