package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"storefront/internal/apperror"
	"storefront/internal/auth"
	"storefront/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ValidationError reports request fields that failed validation.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct returns a *ValidationError carrying message when s is invalid.
func validateStruct(v *validator.Validate, s any, message string) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperror.NewInternal("Validation failed", err)
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &ValidationError{Message: message, Fields: fields}
}

// parseBody decodes the request body into dst.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return &apperror.Error{Kind: apperror.InvalidInput, Message: "Invalid request body", Err: err}
	}
	return nil
}

// currentUser returns the identity attached by the access control middleware.
func currentUser(c *fiber.Ctx) (*auth.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return nil, apperror.NewUnauthorized("Invalid or expired token")
	}
	return claims, nil
}

// ErrorHandler renders handler errors as {message, ...} JSON bodies.
// Validation failures add "errors"; internal failures add "error" with the cause.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			validationErr *ValidationError
			appErr        *apperror.Error
			fiberErr      *fiber.Error
		)
		switch {
		case errors.As(err, &validationErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": validationErr.Message,
				"errors":  validationErr.Fields,
			})
		case errors.As(err, &appErr):
			body := fiber.Map{"message": appErr.Message}
			if appErr.Err != nil && appErr.Kind != apperror.NotFound && appErr.Kind != apperror.Conflict {
				body["error"] = appErr.Err.Error()
			}
			if appErr.Kind == apperror.Internal {
				logger.ErrorContext(c.UserContext(), appErr.Message, "path", c.Path(), "error", appErr.Err)
			}
			return c.Status(appErr.Kind.Status()).JSON(body)
		case errors.As(err, &fiberErr):
			return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		default:
			logger.ErrorContext(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Internal server error",
				"error":   err.Error(),
			})
		}
	}
}
