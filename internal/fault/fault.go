// Package fault defines the failure kinds surfaced by the service and
// their HTTP mapping. Operations return their success value or exactly
// one of these labeled failures.
package fault

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalid      = errors.New("invalid input")
	ErrInvalidColor = errors.New("invalid color")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrTimeout      = errors.New("render timeout")
	ErrCancelled    = errors.New("cancelled")
)

// Invalid wraps err as a 400-class input failure.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...)
}

// RenderError reports a non-zero encoder exit. The stderr tail is kept
// for diagnostics but is never echoed to untrusted clients verbatim.
type RenderError struct {
	Msg        string
	StderrTail []byte
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed: %s", e.Msg)
}

// StatusClientClosed mirrors nginx's non-standard code for a client
// that disconnected before a response was written. HTTPStatus returns it
// for cancelled operations; the API's error writer recognises it and
// writes no body. It is not set as the response status.
const StatusClientClosed = 499

// HTTPStatus maps a failure onto its response status.
func HTTPStatus(err error) int {
	var re *RenderError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrInvalidColor):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrCancelled):
		return StatusClientClosed
	case errors.As(err, &re):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the short human-readable text safe to send to a
// client. Render diagnostics stay server-side.
func Message(err error) string {
	var re *RenderError
	if errors.As(err, &re) {
		return "render failed"
	}
	return err.Error()
}
