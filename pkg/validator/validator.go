package validator

import (
	"github.com/go-playground/validator/v10"
)

// FieldError describes one failed validation rule.
type FieldError struct {
	FailedField string
	Tag         string
	Param       string
}

var validate = validator.New()

// ValidateStruct runs the validate tags of a request DTO and returns every
// failed rule, empty on success.
func ValidateStruct(data interface{}) []FieldError {
	var out []FieldError
	if err := validate.Struct(data); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			out = append(out, FieldError{
				FailedField: fe.StructNamespace(),
				Tag:         fe.Tag(),
				Param:       fe.Param(),
			})
		}
	}
	return out
}
