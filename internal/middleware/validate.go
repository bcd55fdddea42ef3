package middleware

import (
	"net/http"

	"github.com/draftpress/draftpress/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Validator wraps a shared validator instance for request structs.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate checks the struct's validation tags.
func (v *Validator) Validate(s interface{}) error {
	return v.validate.Struct(s)
}

// Fields flattens a validation error into a field -> failed-tag map suitable
// for a JSON response. It returns nil for non-validation errors.
func Fields(err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

// ErrorHandler is the app-level Fiber error handler; it logs and renders every
// unhandled error as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	logger.Get().Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	return c.Status(code).JSON(fiber.Map{
		"error": http.StatusText(code),
	})
}
