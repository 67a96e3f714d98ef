package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetail_DoesNotMutateSentinel(t *testing.T) {
	err := ErrValidationFailed.WithDetail("character name is empty")

	assert.Equal(t, "character name is empty", err.Detail)
	assert.Empty(t, ErrValidationFailed.Detail)
	assert.True(t, stderrors.Is(err, ErrValidationFailed))
}

func TestAsAppError_UnwrapsChain(t *testing.T) {
	base := ErrCredentialsMissing.WithError(fmt.Errorf("no key"))
	wrapped := fmt.Errorf("handler: %w", base)

	require.True(t, IsAppError(wrapped))
	appErr := AsAppError(wrapped)
	assert.Equal(t, CodeCredentialsMissing, appErr.Code)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
}

func TestAsAppError_WrapsForeignError(t *testing.T) {
	appErr := AsAppError(stderrors.New("plain"))
	assert.Equal(t, CodeUnknown, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
	assert.Contains(t, appErr.Error(), "plain")
}

func TestCodeToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ErrSessionNotFound.HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, ErrValidationFailed.HTTPStatus)
	assert.Equal(t, http.StatusBadGateway, ErrLLMCallFailed.HTTPStatus)
}
