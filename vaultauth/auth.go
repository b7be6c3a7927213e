package vaultauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/vault/api"
	"github.com/hashicorp/vault/api/auth/approle"
	"github.com/hashicorp/vault/api/auth/userpass"
	"github.com/jiuli1983/configuration-as-code-plugin/internal/vaulterr"
)

// NewAppRoleAuth returns an AppRole auth method for the given role and secret
// IDs. An empty mount means the default, "approle".
func NewAppRoleAuth(roleID, secretID, mount string) (api.AuthMethod, error) {
	var opts []approle.LoginOption
	if mount != "" {
		opts = append(opts, approle.WithMountPath(mount))
	}

	a, err := approle.NewAppRoleAuth(roleID, &approle.SecretID{FromString: secretID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("approle auth: %w", err)
	}

	return a, nil
}

// NewUserPassAuth returns a userpass auth method. An empty mount means the
// default, "userpass".
func NewUserPassAuth(username, password, mount string) (api.AuthMethod, error) {
	var opts []userpass.LoginOption
	if mount != "" {
		opts = append(opts, userpass.WithMountPath(mount))
	}

	a, err := userpass.NewUserpassAuth(username, &userpass.Password{FromString: password}, opts...)
	if err != nil {
		return nil, fmt.Errorf("userpass auth: %w", err)
	}

	return a, nil
}

// Login authenticates client with auth, and configures client with the
// resulting token.
func Login(ctx context.Context, client *api.Client, auth api.AuthMethod) (*api.Secret, error) {
	secret, err := client.Auth().Login(ctx, auth)
	if err != nil {
		return nil, fmt.Errorf("vault login failed: %w", vaulterr.Flatten(err))
	}

	return secret, nil
}

// CompositeAuthMethod returns an AuthMethod that will try each of the given
// methods in order, until one succeeds.
func CompositeAuthMethod(methods ...api.AuthMethod) api.AuthMethod {
	return &compositeAuthMethod{methods: methods}
}

type compositeAuthMethod struct {
	chosen  api.AuthMethod
	methods []api.AuthMethod
}

func (m *compositeAuthMethod) Login(ctx context.Context, client *api.Client) (secret *api.Secret, err error) {
	if m.chosen == nil {
		for _, auth := range m.methods {
			if auth == nil {
				continue
			}

			secret, err = auth.Login(ctx, client)
			if err == nil {
				m.chosen = auth

				break
			}
		}
	}

	if m.chosen == nil {
		if err == nil {
			err = errors.New("no auth method configured")
		}

		return nil, fmt.Errorf("unable to authenticate with vault by any configured method. Last error was: %w", err)
	}

	if secret == nil {
		return m.chosen.Login(ctx, client)
	}

	return secret, nil
}
