package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrRequiredFields is returned by Validate when a required form field is empty.
var ErrRequiredFields = errors.New("Preencha todos os campos obrigatórios")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the validate tags of a create or update body before it is
// sent. Missing required fields win over any other violation.
func Validate(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating form: %w", err)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return ErrRequiredFields
		}
	}
	fe := fieldErrs[0]
	return fmt.Errorf("valor inválido para %s: %v", fe.Field(), fe.Value())
}
