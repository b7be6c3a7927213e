// Package vaulterr flattens Vault API errors to a single line.
package vaulterr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/vault/api"
)

// responseError gives a Vault API error a one-line message, while keeping the
// original error available to errors.As
type responseError struct {
	*api.ResponseError
}

func (e *responseError) Error() string {
	details := strings.Join(e.Errors, ", ")
	if details != "" {
		details = ", details: " + details
	}

	return fmt.Sprintf("%s %s - %d%s", e.HTTPMethod, e.URL, e.StatusCode, details)
}

func (e *responseError) Unwrap() error {
	return e.ResponseError
}

// Flatten replaces err with a one-line message when it wraps an
// *api.ResponseError. Other errors are returned as they are.
func Flatten(err error) error {
	rerr := &api.ResponseError{}
	if errors.As(err, &rerr) {
		return &responseError{rerr}
	}

	return err
}
