package vaulttest

import (
	"fmt"

	"github.com/hashicorp/vault/api"
)

// NewClient returns a Vault API client for addr, authenticated with token.
func NewClient(addr, token string) (*api.Client, error) {
	config := api.DefaultConfig()
	if config.Error != nil {
		return nil, config.Error
	}

	config.Address = addr

	c, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("vault client creation failed: %w", err)
	}

	c.SetToken(token)

	return c, nil
}
