// Package report fans the grade engine out over the roster and summarizes the results.
package report

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/student"
)

type (
	StatsSource interface {
		Stats(ctx context.Context, studentID string) (attendance.Stats, error)
	}

	AveragesSource interface {
		AveragesByType(ctx context.Context, studentID string) (map[string]float64, error)
	}

	// DataSource supplies the raw signals of one student.
	DataSource interface {
		StatsSource
		AveragesSource
	}
)

type dataSource struct {
	StatsSource
	AveragesSource
}

func NewDataSource(stats StatsSource, averages AveragesSource) DataSource {
	return dataSource{StatsSource: stats, AveragesSource: averages}
}

// Row is the computed grade of one student.
type Row struct {
	StudentID  string           `json:"student_id"`
	Name       string           `json:"name"`
	Course     string           `json:"course"`
	Email      string           `json:"email"`
	Attendance attendance.Stats `json:"attendance"`
	grading.Result
	GradeLabel string `json:"grade_label"`
}

// Generate computes one Row per student, in the given order.
func Generate(ctx context.Context, students []student.Student, src DataSource, weights grading.WeightConfig) ([]Row, error) {
	rows := make([]Row, 0, len(students))
	for _, s := range students {
		row, err := compute(ctx, s, src, weights)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func compute(ctx context.Context, s student.Student, src DataSource, weights grading.WeightConfig) (Row, error) {
	stats, err := src.Stats(ctx, s.ID)
	if err != nil {
		return Row{}, errors.Wrapf(err, "attendance of %s", s.ID)
	}
	avgs, err := src.AveragesByType(ctx, s.ID)
	if err != nil {
		return Row{}, errors.Wrapf(err, "grades of %s", s.ID)
	}

	res := grading.ComputeFinalGrade(stats.Total, stats.Present, avgs, weights)
	return Row{
		StudentID:  s.ID,
		Name:       s.Name,
		Course:     s.Course,
		Email:      s.Email,
		Attendance: stats,
		Result:     res,
		GradeLabel: res.GradePoint.Label(),
	}, nil
}

// Bucket is the number of students with a grade point.
type Bucket struct {
	GradePoint grading.GradePoint `json:"grade_point"`
	Label      string             `json:"label"`
	Count      int                `json:"count"`
}

type Summary struct {
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	Passing int     `json:"passing"`
	// PassRate is the fraction of students passing, in [0, 1].
	PassRate     float64        `json:"pass_rate"`
	Distribution map[string]int `json:"distribution"` // by grade point label
}

// Summarize derives roster wide statistics. An empty roster yields zeros.
func Summarize(rows []Row) Summary {
	sum := Summary{Count: len(rows), Distribution: make(map[string]int)}
	if sum.Count == 0 {
		return sum
	}

	var total float64
	for _, r := range rows {
		total += r.Final
		if r.Passed() {
			sum.Passing++
		}
		sum.Distribution[r.GradeLabel]++
	}
	sum.Mean = total / float64(sum.Count)
	sum.PassRate = float64(sum.Passing) / float64(sum.Count)
	return sum
}

// Buckets lists the distribution best grade first, skipping empty grade points.
func (s Summary) Buckets() []Bucket {
	buckets := make([]Bucket, 0, len(s.Distribution))
	for _, gp := range grading.GradePoints() {
		if n := s.Distribution[gp.Label()]; n > 0 {
			buckets = append(buckets, Bucket{GradePoint: gp, Label: gp.Label(), Count: n})
		}
	}
	return buckets
}

type Report struct {
	Components  []string  `json:"components"`
	Rows        []Row     `json:"rows"`
	Summary     Summary   `json:"summary"`
	GeneratedAt time.Time `json:"generated_at"`
}
