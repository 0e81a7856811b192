package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"devtrack/internal/http/middleware"
	"devtrack/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "NOT_LINKED", "DEVICE_NOT_FOUND")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps service sentinels to HTTP status codes and error
// codes. Anything unmapped is a generic 500 so internals never leak.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotLinked):
		return writeError(c, fiber.StatusConflict, "NOT_LINKED", "no spreadsheet is linked")
	case errors.Is(err, service.ErrInvalidSheetRef):
		return writeError(c, fiber.StatusBadRequest, "INVALID_SHEET", "not a spreadsheet id or url")
	case errors.Is(err, service.ErrSheetNotFound):
		return writeError(c, fiber.StatusNotFound, "SHEET_NOT_FOUND", "spreadsheet not found")
	case errors.Is(err, service.ErrSheetForbidden):
		return writeError(c, fiber.StatusForbidden, "SHEET_FORBIDDEN", "service account has no access to the spreadsheet")
	case errors.Is(err, service.ErrSheetEmpty):
		return writeError(c, fiber.StatusUnprocessableEntity, "SHEET_EMPTY", "sheet has no header row")
	case errors.Is(err, service.ErrColumnNotFound):
		return writeError(c, fiber.StatusUnprocessableEntity, "COLUMN_NOT_FOUND", "required column missing from header row")
	case errors.Is(err, service.ErrDeviceNotFound):
		return writeError(c, fiber.StatusNotFound, "DEVICE_NOT_FOUND", "device not found")
	case errors.Is(err, service.ErrAmbiguousDevice):
		return writeError(c, fiber.StatusConflict, "AMBIGUOUS_DEVICE", "device matches more than one row")
	case errors.Is(err, service.ErrDeviceRequired):
		return writeError(c, fiber.StatusBadRequest, "DEVICE_REQUIRED", "device is required")
	case errors.Is(err, service.ErrUpstream):
		return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "sheets api request failed")
	case errors.Is(err, service.ErrExportDisabled):
		return writeError(c, fiber.StatusServiceUnavailable, "EXPORT_DISABLED", "export storage is not configured")
	case errors.Is(err, service.ErrHistoryDisabled):
		return writeError(c, fiber.StatusServiceUnavailable, "HISTORY_DISABLED", "update history is not configured")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
