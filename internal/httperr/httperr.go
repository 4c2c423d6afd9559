package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/cinema_reservation/internal/service/auth"
	"github.com/Skotchmaster/cinema_reservation/internal/session"
	"github.com/Skotchmaster/cinema_reservation/internal/token"
)

// Body is the JSON shape every error response carries: a stable
// machine-readable kind plus a human message.
type Body struct {
	Status  string `json:"status"`
	Kind    string `json:"error"`
	Message string `json:"message"`
}

func New(code int, kind, message string) *echo.HTTPError {
	return echo.NewHTTPError(code, Body{Status: "error", Kind: kind, Message: message})
}

// Handler maps typed service failures to fixed HTTP statuses. Handlers
// return errors as-is and never pick status codes themselves.
func Handler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := classify(err)
		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"error", err.Error(),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			log.Error("error response write failed", "error", err.Error())
		}
	}
}

func classify(err error) (int, Body) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if body, ok := he.Message.(Body); ok {
			return he.Code, body
		}
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return he.Code, Body{Status: "error", Kind: kindForCode(he.Code), Message: msg}
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusBadRequest, body("invalid_credentials", "Invalid credentials.")
	case errors.Is(err, auth.ErrInactiveAccount):
		return http.StatusBadRequest, body("inactive_account", "The user is inactive.")
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusBadRequest, body("user_exists", "User already exists with this email.")
	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, token.ErrTokenExpired),
		errors.Is(err, token.ErrTokenMalformed):
		return http.StatusUnauthorized, body("unauthorized", "Invalid token.")
	case errors.Is(err, auth.ErrNotFound),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, body("not_found", "Resource not found.")
	case errors.Is(err, session.ErrUnavailable):
		// infrastructure detail stays out of the response body
		return http.StatusInternalServerError, body("internal", "Internal server error.")
	default:
		return http.StatusInternalServerError, body("internal", "Internal server error.")
	}
}

func body(kind, message string) Body {
	return Body{Status: "error", Kind: kind, Message: message}
}

func kindForCode(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	default:
		return "internal"
	}
}
