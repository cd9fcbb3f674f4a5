// Package grading turns raw attendance and grade signals into a weighted final
// percentage and its grade point. The computation is pure: nothing here touches storage.
package grading

// Result is one student's computed grade. It is derived on demand and never persisted.
type Result struct {
	// Percentages holds a 0-100 score per component, including Attendance.
	Percentages map[string]float64 `json:"percentages"`
	Final       float64            `json:"final"`
	GradePoint  GradePoint         `json:"grade_point"`
}

// Percentage returns the score of a component, 0 if absent.
func (r Result) Percentage(component string) float64 {
	return r.Percentages[component]
}

// Passed reports whether the final percentage reaches the pass mark.
func (r Result) Passed() bool {
	return IsPassing(r.Final)
}

// Score is a single graded assessment as seen by the engine.
type Score struct {
	Type     string
	Score    float64
	MaxScore float64
}

// Percentage returns score/maxScore*100, or 0 when maxScore is not positive.
func Percentage(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return score / maxScore * 100
}

// AttendancePercentage returns present/total*100, or 0 when nothing was recorded.
func AttendancePercentage(total, present int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(present) / float64(total) * 100
}

// AverageByType averages the percentage of every score, grouped by assessment type.
// Types without scores are absent from the result.
func AverageByType(scores []Score) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, s := range scores {
		sums[s.Type] += Percentage(s.Score, s.MaxScore)
		counts[s.Type]++
	}
	avgs := make(map[string]float64, len(sums))
	for typ, sum := range sums {
		avgs[typ] = sum / float64(counts[typ])
	}
	return avgs
}

// ComputeFinalGrade computes the per-component percentages, the weighted final percentage and
// the grade point of one student.
//
// The final percentage is the plain sum of percentage*weight/100 over the configured
// components. It is not normalized: weights that do not add up to 100 scale it accordingly.
// Averages for types that are not configured are ignored.
func ComputeFinalGrade(attendanceTotal, attendancePresent int, perTypeAverages map[string]float64, weights WeightConfig) Result {
	pcts := make(map[string]float64, len(weights)+1)
	pcts[ComponentAttendance] = AttendancePercentage(attendanceTotal, attendancePresent)
	for _, w := range weights {
		if w.Component == ComponentAttendance {
			continue
		}
		pcts[w.Component] = perTypeAverages[w.Component] // 0 when no entries
	}

	var final float64
	for _, w := range weights {
		final += pcts[w.Component] * w.Weight / 100
	}

	return Result{
		Percentages: pcts,
		Final:       final,
		GradePoint:  GradePointFor(final),
	}
}
