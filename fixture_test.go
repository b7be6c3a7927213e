package vaulttest

import (
	"path/filepath"
	"runtime"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeeds(t *testing.T) {
	seeds := DefaultSeeds()
	require.Len(t, seeds, 6)

	got := map[string]map[string]string{}
	for _, s := range seeds {
		got[s.FullPath()] = s.Data
	}

	assert.Equal(t, map[string]map[string]string{
		PathKV1Admin:    {"key1": "123", "key2": "456"},
		PathKV1Dev:      {"key3": "789"},
		PathKV2Admin:    {"key1": "123", "key2": "456"},
		PathKV2Dev:      {"key3": "789"},
		PathKV2QA:       {"key2": "321"},
		PathKV2AuthTest: {"key1": "auth-test"},
	}, got)

	for _, s := range seeds {
		switch s.Mount {
		case "kv-v1":
			assert.Equal(t, 1, s.Version, s.FullPath())
		case "kv-v2":
			assert.Equal(t, 2, s.Version, s.FullPath())
		default:
			t.Errorf("unexpected mount %q", s.Mount)
		}
	}
}

func TestSecretArgs(t *testing.T) {
	s := Secret{Data: map[string]string{"key2": "456", "key1": "123", "a": "b=c"}}
	assert.Equal(t, []string{"a=b=c", "key1=123", "key2=456"}, s.Args())

	assert.Empty(t, Secret{}.Args())
}

func TestDefaultFixture(t *testing.T) {
	fx := DefaultFixture()

	assert.Equal(t, "root-token", fx.RootToken)
	assert.Equal(t, "8200/tcp", fx.Port)
	assert.Equal(t, "/admin.hcl", fx.PolicyPath)
	assert.Contains(t, string(fx.Policy), `path "kv-v2/*"`)
	assert.Equal(t, "approle", fx.Role.Mount)
	assert.Equal(t, "admin", fx.Role.Name)
}

func TestFixtureFromEnv(t *testing.T) {
	fsys := fstest.MapFS{
		"run/secrets/token": &fstest.MapFile{Data: []byte("file-token\n")},
	}

	fx := fixtureFromEnvFS(fsys)
	assert.Equal(t, DefaultImage, fx.Image)
	assert.Equal(t, RootToken, fx.RootToken)

	t.Setenv("VAULT_TEST_IMAGE", "hashicorp/vault:1.13.3")
	t.Setenv("VAULT_TEST_ROOT_TOKEN_FILE", "/run/secrets/token")

	fx = fixtureFromEnvFS(fsys)
	assert.Equal(t, "hashicorp/vault:1.13.3", fx.Image)
	assert.Equal(t, "file-token", fx.RootToken)
}

func TestContainerConfig(t *testing.T) {
	fx := DefaultFixture()

	cfg := fx.ContainerConfig(nil)
	assert.Equal(t, fx.Image, cfg.Image)
	assert.Equal(t, fx.RootToken, cfg.RootToken)
	assert.Equal(t, fx.Port, cfg.Port)
	require.Len(t, cfg.Files, 1)
	assert.Equal(t, "/admin.hcl", cfg.Files[0].ContainerPath)
	assert.Equal(t, fx.Policy, cfg.Files[0].Content)
}

func TestDefaultPropertiesPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("os.TempDir ignores $TMPDIR on Windows")
	}

	t.Setenv("TMPDIR", "/var/tmp/casc")

	assert.Equal(t, filepath.Join("/var/tmp/casc", "JCasC_temp_approle_secret.prop"), DefaultPropertiesPath())
}
