package common

import (
	"errors"
	"fmt"
	"net/http"

	"algoarena/internal/judge"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden access")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("resource conflict") // e.g., username already exists
	ErrInternalServer = errors.New("internal server error")
	ErrValidation     = errors.New("validation failed")
	// ErrAlreadyFinalized means a second finalization was attempted on a
	// submission that already left Pending. The stored verdict is never
	// overwritten; this is a programming or race error and gets logged
	// loudly where it happens.
	ErrAlreadyFinalized = errors.New("submission already finalized")
)

// HTTPStatusFromError maps domain and judge errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict), errors.Is(err, ErrAlreadyFinalized):
		return http.StatusConflict
	case errors.Is(err, judge.ErrUnsupportedLanguage):
		return http.StatusBadRequest
	case errors.Is(err, judge.ErrDispatchFailed), errors.Is(err, judge.ErrPollFailed):
		// The judge is unavailable; the submission stays Pending and can be
		// re-evaluated, so the client may retry.
		return http.StatusServiceUnavailable
	case errors.Is(err, judge.ErrPollTimeout):
		// Distinct from failure: the judge is slow, not broken.
		return http.StatusGatewayTimeout
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique violation
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
