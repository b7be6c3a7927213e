package vaultauth

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/jiuli1983/configuration-as-code-plugin/internal/tests/fakevault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvAuthLogin_Token(t *testing.T) {
	_, client := fakevault.New(t)

	t.Setenv("CASC_VAULT_TOKEN", "foo")

	m := EnvAuthMethod()
	s, err := m.Login(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, "foo", s.Auth.ClientToken)
	assert.NotNil(t, m.(*compositeAuthMethod).chosen)
}

func TestEnvAuthLogin_AppRole(t *testing.T) {
	v, client := fakevault.New(t)
	v.AddRole("approle", "admin", "role-1234")

	s, err := client.Logical().Write("auth/approle/role/admin/secret-id", nil)
	require.NoError(t, err)

	t.Setenv("CASC_VAULT_TOKEN", "fallback")
	t.Setenv("CASC_VAULT_APPROLE", "role-1234")
	t.Setenv("CASC_VAULT_APPROLE_SECRET_FILE", "/run/secrets/approle")

	fsys := fstest.MapFS{
		"run/secrets/approle": &fstest.MapFile{Data: []byte(s.Data["secret_id"].(string))},
	}

	secret, err := Login(context.Background(), client, envAuthMethod(fsys))
	require.NoError(t, err)
	assert.Equal(t, "approle-token", secret.Auth.ClientToken)
}

func TestEnvAuthLogin_UserPass(t *testing.T) {
	v, client := fakevault.New(t)
	v.AddUser("admin", "admin")

	t.Setenv("CASC_VAULT_USER", "admin")
	t.Setenv("CASC_VAULT_PW", "admin")

	secret, err := Login(context.Background(), client, EnvAuthMethod())
	require.NoError(t, err)
	assert.Equal(t, "userpass-token", secret.Auth.ClientToken)
}

func TestEnvAuthLogin_Nothing(t *testing.T) {
	_, client := fakevault.New(t)

	t.Setenv("CASC_VAULT_TOKEN", "")

	_, err := envAuthMethod(fstest.MapFS{}).Login(context.Background(), client)
	assert.Error(t, err)
}
