package vaulterr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	rerr := &api.ResponseError{
		HTTPMethod: http.MethodPut,
		URL:        "http://127.0.0.1:8200/v1/auth/approle/role/admin/secret-id",
		StatusCode: http.StatusForbidden,
		Errors:     []string{"permission denied", "try again"},
	}

	err := Flatten(rerr)
	assert.EqualError(t, err,
		"PUT http://127.0.0.1:8200/v1/auth/approle/role/admin/secret-id - 403, details: permission denied, try again")

	var got *api.ResponseError
	require.ErrorAs(t, err, &got)
	assert.Same(t, rerr, got)

	// wrapped errors are found too
	err = Flatten(fmt.Errorf("unable to log in: %w", rerr))
	require.ErrorAs(t, err, &got)
	assert.Same(t, rerr, got)

	rerr.Errors = nil
	assert.EqualError(t, Flatten(rerr),
		"PUT http://127.0.0.1:8200/v1/auth/approle/role/admin/secret-id - 403")

	other := errors.New("connection refused")
	assert.Same(t, other, Flatten(other))
}
