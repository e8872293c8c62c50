package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageFrom(t *testing.T) {
	apiErr := NewAPIError(ErrCodeDependencyCycle, "Adding this dependency would create a cycle")

	assert.Equal(t, "", MessageFrom(nil, "fallback"))
	assert.Equal(t, apiErr.Message, MessageFrom(apiErr, "fallback"))
	assert.Equal(t, apiErr.Message, MessageFrom(fmt.Errorf("add dependency: %w", apiErr), "fallback"))
	assert.Equal(t, "fallback", MessageFrom(stderrors.New("connection refused"), "fallback"))
	assert.Equal(t, "fallback", MessageFrom(&APIError{Code: ErrCodeInternalError}, "fallback"))
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewAPIError(ErrCodeNotFound, "Todo not found"))

	assert.True(t, HasCode(err, ErrCodeNotFound))
	assert.False(t, HasCode(err, ErrCodeConflict))
	assert.False(t, HasCode(stderrors.New("plain"), ErrCodeNotFound))
}
