package vaultauth

import (
	"io/fs"
	"os"

	"github.com/hashicorp/vault/api"
	"github.com/jiuli1983/configuration-as-code-plugin/internal/env"
)

// EnvAuthMethod configures the auth method from the environment variables read
// by the configuration-as-code Vault secret source. It will attempt to
// authenticate with the following methods, in order of precedence:
//
// # approle
//
// Using the role ID from $CASC_VAULT_APPROLE and the secret ID from
// $CASC_VAULT_APPROLE_SECRET.
//
// # userpass
//
// Using the username from $CASC_VAULT_USER and the password from
// $CASC_VAULT_PW. The mount path can be overridden with $CASC_VAULT_MOUNT.
//
// # token
//
// Using the token from $CASC_VAULT_TOKEN.
//
// Every variable can also be read from a file, named by the same variable with
// a _FILE suffix.
func EnvAuthMethod() api.AuthMethod {
	return envAuthMethod(os.DirFS("/"))
}

func envAuthMethod(fsys fs.FS) api.AuthMethod {
	return CompositeAuthMethod(
		envAppRoleAdapter(fsys),
		envUserPassAdapter(fsys),
		&tokenAuthMethod{fsys: fsys},
	)
}

// envAppRoleAdapter builds an AppRoleAuth from environment variables, for use
// only with [EnvAuthMethod]
func envAppRoleAdapter(fsys fs.FS) api.AuthMethod {
	roleID := env.GetenvFS(fsys, "CASC_VAULT_APPROLE")
	secretID := env.GetenvFS(fsys, "CASC_VAULT_APPROLE_SECRET")

	if roleID == "" || secretID == "" {
		return nil
	}

	a, err := NewAppRoleAuth(roleID, secretID, "")
	if err != nil {
		return nil
	}

	return a
}

// envUserPassAdapter builds a UserPassAuth from environment variables, for use
// only with [EnvAuthMethod]
func envUserPassAdapter(fsys fs.FS) api.AuthMethod {
	username := env.GetenvFS(fsys, "CASC_VAULT_USER")
	password := env.GetenvFS(fsys, "CASC_VAULT_PW")

	if username == "" || password == "" {
		return nil
	}

	a, err := NewUserPassAuth(username, password, env.GetenvFS(fsys, "CASC_VAULT_MOUNT"))
	if err != nil {
		return nil
	}

	return a
}
