package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{NotFound("appointment", nil), http.StatusNotFound},
		{Validation("doctor and patient are required", nil), http.StatusBadRequest},
		{EmptyInput("doctor notes are empty"), http.StatusBadRequest},
		{Unauthorized("", nil), http.StatusForbidden},
		{Conflict("payment already recorded", nil), http.StatusConflict},
		{Upstream("ai summary failed", nil), http.StatusBadGateway},
		{Internal(fmt.Errorf("boom")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), tc.err.Message)
	}
}

func TestIsUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("saving notes: %w", Unauthorized("not your appointment", nil))
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))

	conflict := Conflict("duplicate payment", fmt.Errorf("pq: unique violation"))
	assert.True(t, IsConflict(conflict))
	assert.Equal(t, "duplicate payment: pq: unique violation", conflict.Error())
}
