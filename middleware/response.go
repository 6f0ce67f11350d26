package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"lms/apperr"
	"lms/config"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func JsonResponse(c *fiber.Ctx, statusCode int, success bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(Envelope{
		Success: success,
		Message: message,
		Data:    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Envelope{
		Success: false,
		Message: "Validation failed!",
		Error:   apperr.KindValidation.String(),
		Data:    errors,
	})
}

// ErrorResponse writes err using the status of its apperr kind. Details of
// internal failures are only exposed outside production.
func ErrorResponse(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	env := Envelope{
		Success: false,
		Message: apperr.PublicMessage(err),
		Error:   kind.String(),
	}
	if fields := apperr.FieldsOf(err); len(fields) > 0 {
		env.Data = fields
	}

	if kind == apperr.KindInternal || kind == apperr.KindUnavailable {
		zap.L().Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		if !isProduction() {
			env.Error = err.Error()
		}
	}

	return c.Status(kind.HTTPStatus()).JSON(env)
}

// ErrorHandler is the fiber.Config ErrorHandler. It renders framework errors
// such as unknown routes and oversized bodies in the same envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(Envelope{Success: false, Message: fe.Message, Error: fe.Message})
	}
	return ErrorResponse(c, err)
}

func isProduction() bool {
	return config.AppConfig != nil && config.AppConfig.IsProduction()
}
