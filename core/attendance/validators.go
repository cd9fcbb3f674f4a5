package attendance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

var (
	statusTag  = "attendance_status"
	statusText = "status must be one of Present, Absent, Late or Excused"
)

// InitValidators registers the attendance validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

func statusValidation(fl validator.FieldLevel) bool {
	var s string
	switch v := fl.Field().Interface().(type) {
	case Status:
		s = string(v)
	case string:
		s = v
	default:
		return false
	}
	for _, st := range Statuses {
		if s == string(st) {
			return true
		}
	}
	return false
}
