package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("load comment: %w", NotFound("no such comment"))

	got := From(err)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "no such comment", got.Detail)
	assert.True(t, Is(err, http.StatusNotFound))
	assert.False(t, Is(err, http.StatusGone))
}

func TestFromUnknownErrorIsServerError(t *testing.T) {
	got := From(errors.New("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, "server_error", got.Code)
}

func TestGoneCarriesMeta(t *testing.T) {
	err := Gone("The requested user is no longer available.", map[string]any{"full_name": "Ada"})
	assert.Equal(t, http.StatusGone, err.Status)
	assert.Equal(t, "Ada", err.Meta["full_name"])
	assert.Contains(t, err.Error(), "no longer available")
}
