package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"userauth/internal/logging"
)

// Handler returns the echo.HTTPErrorHandler every route funnels into. It renders
// {message, code} for HTTPError and echo.HTTPError and hides anything else behind
// a generic 500.
func Handler(log logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		resp := toHTTPError(err)
		if resp.StatusCode >= http.StatusInternalServerError {
			log.Error(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"error", err,
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(resp.StatusCode)
		} else {
			writeErr = c.JSON(resp.StatusCode, resp.ToErrorResponse())
		}
		if writeErr != nil {
			log.Warn(c.Request().Context(), "write error response", "error", writeErr)
		}
	}
}

func toHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		// echo-jwt and the router wrap their own errors in echo.HTTPError.
		if inner, ok := echoErr.Internal.(*HTTPError); ok {
			return inner
		}
		msg := http.StatusText(echoErr.Code)
		switch m := echoErr.Message.(type) {
		case string:
			msg = m
		case ErrorResponse:
			msg = m.Message
		case error:
			msg = m.Error()
		case nil:
		default:
			msg = fmt.Sprint(m)
		}
		return NewHTTPError(echoErr.Code, msg, "")
	}

	return Internal("internal server error", err)
}
