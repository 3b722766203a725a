// Package validator adapts go-playground/validator to Echo's Validator
// interface so handlers can call c.Validate on bound requests.
package validator

import (
	playground "github.com/go-playground/validator/v10"
)

// CustomValidator wraps a shared validator instance.
type CustomValidator struct {
	validate *playground.Validate
}

// New creates the Echo request validator.
func New() *CustomValidator {
	return &CustomValidator{validate: playground.New()}
}

// Validate implements echo.Validator.
func (v *CustomValidator) Validate(i any) error {
	return v.validate.Struct(i)
}
