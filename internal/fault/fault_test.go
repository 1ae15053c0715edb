package fault

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid", Invalid("bad bounds"), http.StatusBadRequest},
		{"invalid color", fmt.Errorf("parse: %w", ErrInvalidColor), http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("video x: %w", ErrForbidden), http.StatusForbidden},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"conflict", ErrConflict, http.StatusConflict},
		{"timeout", fmt.Errorf("encoder exceeded 3m0s: %w", ErrTimeout), http.StatusGatewayTimeout},
		{"cancelled", ErrCancelled, StatusClientClosed},
		{"render failed", &RenderError{Msg: "exit 1"}, http.StatusInternalServerError},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestMessageHidesRenderDiagnostics(t *testing.T) {
	err := &RenderError{Msg: "exit 1", StderrTail: []byte("x264 internals and paths")}
	msg := Message(err)
	assert.Equal(t, "render failed", msg)
	assert.NotContains(t, msg, "x264")
}

func TestMessageWrappedRenderError(t *testing.T) {
	err := fmt.Errorf("burn: %w", &RenderError{Msg: "exit 1"})
	assert.Equal(t, "render failed", Message(err))
}

func TestInvalidWrapsSentinel(t *testing.T) {
	err := Invalid("segment %d out of bounds", 3)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Contains(t, err.Error(), "segment 3 out of bounds")
}
