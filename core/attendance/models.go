package attendance

import (
	"strings"
	"time"

	"github.com/trezcool/gradebook/core"
)

type Status string

// Statuses
const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusLate    Status = "Late"
	StatusExcused Status = "Excused"
)

var Statuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, bool) {
	s = core.CleanString(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// Counts reports whether the status counts as attended. Late and Excused records still count
// as sessions.
func (s Status) Counts() bool { return s == StatusPresent }

// WeekDays are the class days shown in the week view.
var WeekDays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
}

// ParseWeekday accepts full ("Monday") or short ("mon") english day names, for class days only.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = core.CleanString(s, true /* lower */)
	if len(s) < 3 {
		return 0, false
	}
	for _, d := range WeekDays {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, true
		}
	}
	return 0, false
}

// WeekStart returns the monday of ref's week. Sundays belong to the week that just ended.
func WeekStart(ref time.Time) time.Time {
	ref = core.TruncateDate(ref)
	offset := (int(ref.Weekday()) + 6) % 7
	return ref.AddDate(0, 0, -offset)
}

// Record is the attendance of one student on one date. There is at most one per (student, date).
type Record struct {
	ID        int    `json:"id"`
	StudentID string `json:"student_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Status    Status `json:"status"`

	// set when querying
	StudentName string `json:"student_name,omitempty"`
	Course      string `json:"course,omitempty"`
}

// MarkAttendance sets the status of a student on a date, today if empty.
type MarkAttendance struct {
	StudentID string `json:"student_id" validate:"required,notblank"`
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Status    Status `json:"status" validate:"required,attendance_status"`
}

func (ma *MarkAttendance) clean() {
	ma.StudentID = core.CleanString(ma.StudentID)
	ma.Date = core.CleanString(ma.Date)
	if st, ok := ParseStatus(string(ma.Status)); ok {
		ma.Status = st
	}
	if ma.Date == "" {
		ma.Date = core.FormatDate(core.Today())
	}
}

// MarkRoster marks the whole roster on one date: listed students Present, the others Absent.
type MarkRoster struct {
	Date    string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Present []string `json:"present"`
}

type Stats struct {
	Total   int `json:"total"`
	Present int `json:"present"`
}

func (s Stats) Percentage() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Present) / float64(s.Total) * 100
}

// Day is one class day of a week view.
type Day struct {
	Weekday time.Weekday `json:"-"`
	Name    string       `json:"day"`
	Date    string       `json:"date"`
	Status  Status       `json:"status,omitempty"` // empty when not marked
	Present bool         `json:"present"`
}

type QueryFilter struct {
	StudentID string `query:"student_id"`
	Status    Status `query:"status"`
	From      string `query:"from"` // inclusive YYYY-MM-DD
	To        string `query:"to"`   // inclusive YYYY-MM-DD
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.From = core.CleanString(qf.From)
	qf.To = core.CleanString(qf.To)
	if st, ok := ParseStatus(string(qf.Status)); ok {
		qf.Status = st
	} else {
		qf.Status = ""
	}
}
