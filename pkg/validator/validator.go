// Package validator wraps go-playground/validator with the project's custom types.
package validator

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/aristath/bankdash/internal/domain"
	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{
		validate: validator.New(),
	}
	v.registerCustomTypes()
	return v
}

// Struct runs struct-tag validation and returns the raw validator error.
func (v *Validator) Struct(i interface{}) error {
	return v.validate.Struct(i)
}

// Validate is like Struct but formats field errors into a single message.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var errMessages []string
			for _, e := range validationErrors {
				errMessages = append(errMessages, fmt.Sprintf(
					"Field '%s' failed validation '%s'",
					e.Field(),
					e.Tag(),
				))
			}
			return fmt.Errorf("validation failed: %v", errMessages)
		}
		return err
	}
	return nil
}

// FirstInvalidField returns the struct field name of the first failed rule in err.
// Fields are reported in declaration order.
func FirstInvalidField(err error) (string, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "", false
	}
	return validationErrors[0].StructField(), true
}

func (v *Validator) registerCustomTypes() {
	// Validate domain.Money as float64 so numeric tags (gte, lte) apply
	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if m, ok := field.Interface().(domain.Money); ok {
			return m.Float()
		}
		return nil
	}, domain.Money{})
}
