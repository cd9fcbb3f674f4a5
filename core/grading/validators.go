package grading

import (
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

var (
	weightsTotalTag  = "weights_total"
	weightsTotalText = "total weight must equal 100% (currently {0}%)"

	uniqueComponentsTag  = "unique_components"
	uniqueComponentsText = "components must be unique"
)

// InitValidators registers the grading configuration validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(saveWeightsStructValidation, SaveWeights{})

	registerParamTranslation(validate, translator, weightsTotalTag, weightsTotalText)
	registerParamTranslation(validate, translator, uniqueComponentsTag, uniqueComponentsText)
}

// registerParamTranslation is like core.RegisterCustomTranslation but substitutes the
// validation param instead of the field name.
func registerParamTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Param())
			return s
		},
	)
}

// saveWeightsStructValidation checks that components are unique and weights add up to 100.
func saveWeightsStructValidation(sl validator.StructLevel) {
	sw, ok := sl.Current().Interface().(SaveWeights)
	if !ok || len(sw.Weights) == 0 {
		return
	}

	seen := make(map[string]bool, len(sw.Weights))
	for _, w := range sw.Weights {
		if seen[w.Component] {
			sl.ReportError(sw.Weights, "weights", "Weights", uniqueComponentsTag, "")
			return
		}
		seen[w.Component] = true
	}

	if !sw.Weights.IsBalanced() {
		total := strconv.FormatFloat(sw.Weights.Total(), 'f', 1, 64)
		sl.ReportError(sw.Weights, "weights", "Weights", weightsTotalTag, total)
	}
}
