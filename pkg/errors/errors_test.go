package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Creation(t *testing.T) {
	cause := errors.New("underlying error")

	err := NewTransportError("connection refused", cause)

	assert.Equal(t, ErrorTypeTransport, err.Type)
	assert.Equal(t, "connection refused", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.NotNil(t, err.Context)
}

func TestDomainError_WithContext(t *testing.T) {
	err := NewRecoveryError("restart verification failed", nil)

	err = err.WithContext("unit", "memory-service")
	err = err.WithContext("port", 8443)

	assert.Equal(t, "memory-service", err.Context["unit"])
	assert.Equal(t, 8443, err.Context["port"])
}

func TestDomainError_ErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		error    *DomainError
		expected string
	}{
		{
			name:     "error without cause",
			error:    NewProcessDownError("unit not active", nil),
			expected: "process_down: unit not active",
		},
		{
			name:     "error with cause",
			error:    NewFunctionalError("store round trip failed", errors.New("no success marker")),
			expected: "functional: store round trip failed: no success marker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.error.Error())
		})
	}
}

func TestDomainError_TypeChecking(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
		matches bool
	}{
		{"process down matches", NewProcessDownError("dead", nil), IsProcessDownError, true},
		{"transport matches", NewTransportError("timeout", nil), IsTransportError, true},
		{"functional matches", NewFunctionalError("bad body", nil), IsFunctionalError, true},
		{"recovery matches", NewRecoveryError("verify failed", nil), IsRecoveryError, true},
		{"notify matches", NewNotifyError("sink unreachable", nil), IsNotifyError, true},
		{"validation matches", NewValidationError("bad config", nil), IsValidationError, true},
		{"cross type does not match", NewTransportError("timeout", nil), IsRecoveryError, false},
		{"plain error does not match", errors.New("plain"), IsTransportError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matches, tt.checker(tt.err))
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewTransportError("health endpoint unreachable", cause)

	wrapped := fmt.Errorf("run failed: %w", err)

	assert.True(t, IsTransportError(wrapped))
	assert.True(t, errors.Is(wrapped, cause))
}
