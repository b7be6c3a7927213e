package vaultauth

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/vault/api"
	"github.com/jiuli1983/configuration-as-code-plugin/internal/env"
)

// NewTokenAuth authenticates with the given token, or if none is provided,
// with the token in $CASC_VAULT_TOKEN (or the file named by
// $CASC_VAULT_TOKEN_FILE).
//
// See also https://developer.hashicorp.com/vault/docs/auth/token
func NewTokenAuth(token string) api.AuthMethod {
	return &tokenAuthMethod{token: token, fsys: os.DirFS("/")}
}

type tokenAuthMethod struct {
	fsys  fs.FS
	token string
}

func (m *tokenAuthMethod) Login(_ context.Context, _ *api.Client) (*api.Secret, error) {
	token := m.token
	if token == "" {
		token = env.GetenvFS(m.fsys, "CASC_VAULT_TOKEN")
	}

	if token == "" {
		return nil, fmt.Errorf("token auth: no token provided")
	}

	return &api.Secret{Auth: &api.SecretAuth{ClientToken: token}}, nil
}
