// Package validator adapts go-playground/validator to Echo's Validator
// interface so handlers can call c.Validate on bound inputs.
package validator

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator wraps a shared validator instance. The instance caches struct
// metadata, so one per server is enough.
type Validator struct {
	validate *validator.Validate
}

// New creates the Echo validator used by the HTTP server.
func New() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate checks the struct tags on the bound input and converts failures
// into a 400 the error handler can render.
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}
