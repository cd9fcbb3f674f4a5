package grading

import "strconv"

// GradePoint is the institutional grade scale value: 1.00 is best, 5.00 is failing.
type GradePoint float64

const (
	// PassMark is the lowest final percentage that is not failing.
	PassMark = 60.0

	Failing GradePoint = 5.00
)

type band struct {
	min   float64
	point GradePoint
}

// bands must stay sorted by descending lower bound.
var bands = []band{
	{100, 1.00},
	{90, 1.25},
	{85, 1.75},
	{80, 2.00},
	{75, 2.25},
	{70, 2.50},
	{65, 2.75},
	{PassMark, 3.00},
}

// GradePoints lists every value GradePointFor may return, best first.
func GradePoints() []GradePoint {
	points := make([]GradePoint, 0, len(bands)+1)
	for _, b := range bands {
		points = append(points, b.point)
	}
	return append(points, Failing)
}

// GradePointFor maps a final percentage to its grade point. Lower bounds are inclusive.
func GradePointFor(percentage float64) GradePoint {
	for _, b := range bands {
		if percentage >= b.min {
			return b.point
		}
	}
	return Failing
}

// IsPassing reports whether a final percentage passes.
func IsPassing(percentage float64) bool {
	return percentage >= PassMark
}

// Label formats the grade point with two decimals, eg. "1.25".
func (gp GradePoint) Label() string {
	return strconv.FormatFloat(float64(gp), 'f', 2, 64)
}

func (gp GradePoint) String() string { return gp.Label() }
