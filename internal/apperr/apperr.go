package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrIncorrectArgs = errors.New("incorrect args")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
)

// SystemError wraps the first hard failure of a pipeline run. The cause
// travels to the caller untouched; errors.Is/As see through it.
type SystemError struct {
	Cause error
}

func (e *SystemError) Error() string {
	return "system error: " + e.Cause.Error()
}

func (e *SystemError) Unwrap() error {
	return e.Cause
}

// System wraps cause as a SystemError. Already-wrapped errors pass
// through so the original cause is never double-wrapped on its way up.
func System(cause error) error {
	if cause == nil {
		return nil
	}
	var se *SystemError
	if errors.As(cause, &se) {
		return cause
	}
	return &SystemError{Cause: cause}
}

func IsSystem(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}

// HTTPStatus maps the error taxonomy to response status codes.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, ErrIncorrectArgs):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
