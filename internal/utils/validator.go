package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var amountPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// NewValidator returns a validator with the register's custom tags:
//
//	amount: non-negative decimal string with at most two fraction digits
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// only fails for a duplicate tag name, which cannot happen here
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		return amountPattern.MatchString(fl.Field().String())
	})

	return v
}
