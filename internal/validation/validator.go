package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator shared by payload decoding.
func New() *validatorv10.Validate {
	return validatorv10.New()
}

// ErrorMap flattens validator errors into field -> message form so
// normalization failures log with the offending fields named.
func ErrorMap(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.StructNamespace()] = fe.Error() // simple message; can be improved
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}
