// Package apperror carries HTTP status codes alongside errors and renders them as JSON.
package apperror

import (
	"errors"

	"stocky-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AppError is an error with the HTTP status it should be answered with
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) HTTPStatus() int { return e.Status }

func New(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

// Wrap uses err's text as the client message
func Wrap(status int, err error) *AppError {
	return &AppError{Status: status, Message: err.Error(), Err: err}
}

func BadRequest(message string) *AppError   { return New(fiber.StatusBadRequest, message) }
func Unauthorized(message string) *AppError { return New(fiber.StatusUnauthorized, message) }
func Forbidden(message string) *AppError    { return New(fiber.StatusForbidden, message) }
func NotFound(message string) *AppError     { return New(fiber.StatusNotFound, message) }
func Conflict(message string) *AppError     { return New(fiber.StatusConflict, message) }
func BadGateway(message string) *AppError   { return New(fiber.StatusBadGateway, message) }

// Internal hides err from the client but keeps it for the log
func Internal(err error) *AppError {
	return &AppError{Status: fiber.StatusInternalServerError, Message: "Internal Server Error", Err: err}
}

// Handler is the Fiber ErrorHandler for the whole app
func Handler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var appErr *AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		status = appErr.Status
		message = appErr.Error()
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
		message = fiberErr.Message
	}

	if status >= fiber.StatusInternalServerError {
		logger.FromFiber(c).Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}
