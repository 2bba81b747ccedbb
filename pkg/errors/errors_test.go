package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeDatasetLoad, "dataset fetch failed")
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeDatasetLoad, err.Code)
	assert.Equal(t, "[DATA_001] dataset fetch failed", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestWithDetail(t *testing.T) {
	err := NotFound("compound not found").WithDetail("name=aspirin")
	assert.Equal(t, "[COMMON_003] compound not found: name=aspirin", err.Error())

	var nilErr *AppError
	assert.Nil(t, nilErr.WithDetail("ignored"))
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrCodeEmbeddingLoad, "coordinate fetch failed")
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeEmbeddingLoad, err.Code)
	assert.ErrorIs(t, err, cause)

	assert.Nil(t, Wrap(nil, ErrCodeEmbeddingLoad, "no-op"))
}

func TestWrapPreservesCodeForUnknown(t *testing.T) {
	inner := New(ErrCodeCompoundNotFound, "missing")
	wrapped := Wrap(fmt.Errorf("repo: %w", inner), ErrCodeUnknown, "lookup failed")
	assert.Equal(t, ErrCodeCompoundNotFound, wrapped.Code)
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeCacheError, "cache miss")
	outer := fmt.Errorf("fetch: %w", inner)

	assert.True(t, IsCode(outer, ErrCodeCacheError))
	assert.False(t, IsCode(outer, ErrCodeDatasetLoad))
	assert.False(t, IsCode(nil, ErrCodeCacheError))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("gone")))
	assert.True(t, IsNotFound(New(ErrCodeCompoundNotFound, "gone")))
	assert.False(t, IsNotFound(Internal("boom")))
	assert.False(t, IsNotFound(nil))
}

func TestIsCancelled(t *testing.T) {
	assert.True(t, IsCancelled(Cancelled("superseded")))
	assert.False(t, IsCancelled(Internal("boom")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, ErrCodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrCodeValidation, GetCode(Validation("bad dose")))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{CodeOK, http.StatusOK},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeEmbeddingWeightOOB, http.StatusBadRequest},
		{ErrCodeCompoundNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeTimeout, http.StatusGatewayTimeout},
		{ErrCodeRendererUnavailable, http.StatusServiceUnavailable},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.code), "code %s", tc.code)
	}
}
