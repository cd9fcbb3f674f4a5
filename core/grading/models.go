package grading

import (
	"math"

	"github.com/trezcool/gradebook/core"
)

// Default components
const (
	ComponentAttendance  = "Attendance"
	ComponentQuizzes     = "Quizzes"
	ComponentAssignments = "Assignments"
	ComponentMidterm     = "Midterm"
	ComponentFinalExam   = "Final Exam"
)

const (
	// TotalWeight is what a saved configuration must add up to, within WeightTolerance.
	TotalWeight     = 100.0
	WeightTolerance = 0.01
)

// Weight is the share, in percent, of one component in the final grade.
type Weight struct {
	Component string  `json:"component" yaml:"component" validate:"required,notblank"`
	Weight    float64 `json:"weight" yaml:"weight" validate:"gte=0,lte=100"`
}

// WeightConfig is the ordered grading configuration.
type WeightConfig []Weight

// DefaultWeights returns a fresh copy of the factory configuration.
func DefaultWeights() WeightConfig {
	return WeightConfig{
		{Component: ComponentAttendance, Weight: 10},
		{Component: ComponentQuizzes, Weight: 20},
		{Component: ComponentAssignments, Weight: 30},
		{Component: ComponentMidterm, Weight: 20},
		{Component: ComponentFinalExam, Weight: 20},
	}
}

// IsDefaultComponent reports whether name is one of the undeletable default components.
func IsDefaultComponent(name string) bool {
	for _, w := range DefaultWeights() {
		if w.Component == name {
			return true
		}
	}
	return false
}

// Total sums every weight.
func (wc WeightConfig) Total() float64 {
	var total float64
	for _, w := range wc {
		total += w.Weight
	}
	return total
}

// IsBalanced reports whether the weights add up to TotalWeight within WeightTolerance.
func (wc WeightConfig) IsBalanced() bool {
	return math.Abs(wc.Total()-TotalWeight) <= WeightTolerance
}

// Components lists component names in configuration order.
func (wc WeightConfig) Components() []string {
	names := make([]string, 0, len(wc))
	for _, w := range wc {
		names = append(names, w.Component)
	}
	return names
}

// Get returns the weight of a component.
func (wc WeightConfig) Get(component string) (Weight, bool) {
	for _, w := range wc {
		if w.Component == component {
			return w, true
		}
	}
	return Weight{}, false
}

// Has reports whether component is configured.
func (wc WeightConfig) Has(component string) bool {
	_, ok := wc.Get(component)
	return ok
}

// SaveWeights is the payload for replacing the weights of the configured components.
type SaveWeights struct {
	Weights WeightConfig `json:"weights" yaml:"weights" validate:"required,min=1,dive"`
}

func (sw *SaveWeights) clean() {
	for i := range sw.Weights {
		sw.Weights[i].Component = core.CleanString(sw.Weights[i].Component)
	}
}

// NewComponent is the payload for adding a custom component.
type NewComponent struct {
	Component string  `json:"component" validate:"required,notblank,max=64"`
	Weight    float64 `json:"weight" validate:"gte=0,lte=100"`
}
