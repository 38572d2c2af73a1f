package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/identra/identra/pkg/constants"
	"github.com/identra/identra/pkg/errors"
)

func TestValidationFailed_AggregatesFields(t *testing.T) {
	err := errors.ErrValidationFailed(
		errors.FieldError{Field: "Code", Message: "code is required"},
		errors.FieldError{Field: "RedirectUris", Message: "at least one redirect URI is required"},
	)

	assert.Equal(t, constants.ErrCodeValidationFailed, err.Code())
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
	assert.Len(t, err.Fields(), 2)
	assert.Contains(t, err.Error(), "Code: code is required")
	assert.Contains(t, err.Error(), "RedirectUris: at least one redirect URI is required")
}

func TestStatusMapping(t *testing.T) {
	cases := map[*errors.AppError]int{
		errors.ErrForbidden("ada", constants.OpAuthorize):   http.StatusForbidden,
		errors.ErrNotFound("application"):                   http.StatusNotFound,
		errors.ErrExpired("authorization code"):             http.StatusUnauthorized,
		errors.ErrDataAccess(fmt.Errorf("conn refused")):    http.StatusServiceUnavailable,
		errors.ErrInvalidToken(fmt.Errorf("bad signature")): http.StatusUnauthorized,
		errors.ErrInternal(fmt.Errorf("boom")):              http.StatusInternalServerError,
	}
	for err, status := range cases {
		assert.Equal(t, status, err.HTTPStatus(), err.Error())
	}
}

func TestClassificationHelpers(t *testing.T) {
	assert.True(t, errors.IsNotFound(errors.ErrNotFound("user")))
	assert.False(t, errors.IsNotFound(errors.ErrExpired("token")))
	assert.True(t, errors.IsExpired(errors.ErrExpired("token")))
	assert.True(t, errors.IsForbidden(errors.ErrForbidden("x", constants.OpAuthorize)))
	assert.False(t, errors.IsForbidden(stderrors.New("plain")))

	// Wrapped AppErrors still classify.
	wrapped := fmt.Errorf("outer: %w", errors.ErrNotFound("scope"))
	assert.True(t, errors.IsNotFound(wrapped))
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("driver: connection reset")
	err := errors.ErrDataAccess(cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, constants.ErrCodeDataAccess, errors.CodeOf(err))
	assert.Equal(t, constants.ErrCodeInternal, errors.CodeOf(stderrors.New("foreign")))
}

func TestWithCause(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := errors.ErrNotFound("token").WithCause(cause)
	assert.ErrorIs(t, err, cause)
}
