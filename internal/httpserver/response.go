package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/vidtube/internal/service"
	"github.com/Skotchmaster/vidtube/internal/transport"
)

func respond(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, transport.APIResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// httpError translates a tagged service error into an echo HTTPError. Status
// codes live only here.
func httpError(err error) *echo.HTTPError {
	msg := err.Error()
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, stripTag(msg, service.ErrValidation))
	case errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, stripTag(msg, service.ErrUnauthorized))
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, stripTag(msg, service.ErrNotFound))
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, stripTag(msg, service.ErrConflict))
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, stripTag(msg, service.ErrInternal))
	}
}

func stripTag(msg string, tag error) string {
	return strings.TrimPrefix(msg, tag.Error()+": ")
}

// ErrorHandler renders every error in the same envelope as success responses.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}

	_ = c.JSON(status, transport.APIResponse{
		StatusCode: status,
		Message:    message,
		Success:    false,
	})
}
