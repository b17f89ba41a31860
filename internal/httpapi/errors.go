package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	taskservice "github.com/thenoetrevino/tasks/internal/services/task"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a task service error kind to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, taskservice.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, taskservice.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, taskservice.ErrAmbiguous):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c echo.Context, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.JSON(status, errorResponse{Error: err.Error()})
}
