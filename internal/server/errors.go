package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/histpath/readingorder/ingest"
	"github.com/histpath/readingorder/internal/jobs"
	"github.com/histpath/readingorder/layout"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// classify maps an error to its HTTP status and stable code.
func classify(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.Is(err, layout.ErrConfiguration):
		return fiber.StatusBadRequest, "INVALID_CONFIGURATION"
	case errors.Is(err, errBadRequest):
		return fiber.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, ingest.ErrUnknownFormat):
		return fiber.StatusUnsupportedMediaType, "UNKNOWN_FORMAT"
	case errors.Is(err, ingest.ErrMalformed):
		return fiber.StatusUnprocessableEntity, "MALFORMED_INPUT"
	case errors.Is(err, jobs.ErrNotFound):
		return fiber.StatusNotFound, "JOB_NOT_FOUND"
	case errors.As(err, &fe):
		return fe.Code, "HTTP_ERROR"
	default:
		return fiber.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

var errBadRequest = errors.New("bad request")

func fiberErrorHandler(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "internal server error"
	}
	return c.Status(status).JSON(ErrorResponse{
		Error:     msg,
		Code:      code,
		RequestID: requestID(c),
	})
}
