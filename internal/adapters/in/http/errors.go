package http

import (
	"errors"
	"net/http"

	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/generated/servers"
	"bilbo/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusFor maps domain errors to HTTP status codes. A joined error can match
// several cases; the first one listed wins, so a link to a missing order is a
// 404 even when the same append also over-allocates.
func statusFor(err error) int {
	switch {
	case errors.Is(err, order.ErrConcurrentModification),
		errors.Is(err, order.ErrTerminalState),
		errors.Is(err, order.ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrAllocationViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// violations flattens every AllocationViolationError in err's tree.
func violations(err error) []servers.Violation {
	var result []servers.Violation
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if v, ok := e.(*order.AllocationViolationError); ok {
			result = append(result, fromViolation(v))
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return result
}

func (s *Server) writeError(c echo.Context, err error) error {
	status := statusFor(err)
	body := servers.Error{Code: status, Message: err.Error()}

	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "Request failed", "path", c.Path(), "error", err)
		body.Message = http.StatusText(status)
	}
	if status == http.StatusUnprocessableEntity {
		found := violations(err)
		body.Violations = &found
	}

	return c.JSON(status, body)
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, servers.Error{Code: http.StatusBadRequest, Message: message})
}
