package grade

import (
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grading"
)

// Entry is one graded assessment of a student. Entries are never updated in place.
type Entry struct {
	ID        int     `json:"id"`
	StudentID string  `json:"student_id"`
	Type      string  `json:"assessment_type"`
	Name      string  `json:"assessment_name"`
	Score     float64 `json:"score"`
	MaxScore  float64 `json:"max_score"`
	Date      string  `json:"date"` // YYYY-MM-DD

	// set when querying
	StudentName string `json:"student_name,omitempty"`
}

// Percentage returns Score/MaxScore*100, 0 if MaxScore is not positive.
func (e Entry) Percentage() float64 {
	return grading.Percentage(e.Score, e.MaxScore)
}

// NewEntry contains information needed to record a grade. Date defaults to today.
type NewEntry struct {
	StudentID string  `json:"student_id" validate:"required,notblank"`
	Type      string  `json:"assessment_type" validate:"required,notblank"`
	Name      string  `json:"assessment_name" validate:"required,notblank,max=128"`
	Score     float64 `json:"score" validate:"gte=0,ltefield=MaxScore"`
	MaxScore  float64 `json:"max_score" validate:"gt=0"`
	Date      string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (ne *NewEntry) clean() {
	ne.StudentID = core.CleanString(ne.StudentID)
	ne.Type = core.CleanString(ne.Type)
	ne.Name = core.CleanString(ne.Name)
	ne.Date = core.CleanString(ne.Date)
	if ne.Date == "" {
		ne.Date = core.FormatDate(core.Today())
	}
}

type QueryFilter struct {
	StudentID string `query:"student_id"`
	Type      string `query:"assessment_type"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Type = core.CleanString(qf.Type)
}
