package vaulttest

import (
	_ "embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/jiuli1983/configuration-as-code-plugin/internal/env"
	"github.com/jiuli1983/configuration-as-code-plugin/vaultcontainer"
	"github.com/sirupsen/logrus"
)

// Values the plugin's integration tests rely on.
const (
	DefaultImage = "hashicorp/vault:1.15"
	RootToken    = "root-token"

	User     = "admin"
	Password = "admin"

	PathKV1Admin    = "kv-v1/admin"
	PathKV1Dev      = "kv-v1/dev"
	PathKV2Admin    = "kv-v2/admin"
	PathKV2Dev      = "kv-v2/dev"
	PathKV2QA       = "kv-v2/qa"
	PathKV2AuthTest = "kv-v2/auth-test"

	// PropertiesFile is the name of the credentials file written to the OS
	// temp directory.
	PropertiesFile = "JCasC_temp_approle_secret.prop"
)

//go:embed admin.hcl
var adminPolicy []byte

// Engine is a key/value secrets engine mount.
type Engine struct {
	Path    string
	Version int
}

// Secret is a key/value secret seeded into one of the engines.
type Secret struct {
	Data    map[string]string
	Mount   string
	Path    string
	Version int
}

// FullPath returns the path used with `vault kv put`, e.g. "kv-v2/qa".
func (s Secret) FullPath() string {
	return s.Mount + "/" + s.Path
}

// Args renders the secret's data as sorted key=value arguments.
func (s Secret) Args() []string {
	keys := make([]string, 0, len(s.Data))
	for k := range s.Data {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	args := make([]string, 0, len(keys))
	for _, k := range keys {
		args = append(args, k+"="+s.Data[k])
	}

	return args
}

// AppRole describes the role created on the approle auth mount.
type AppRole struct {
	Mount string
	Name  string

	// Params are passed verbatim to `vault write auth/<mount>/role/<name>`
	Params []string
}

// Fixture describes everything the provisioner creates.
type Fixture struct {
	Image     string
	RootToken string

	// Port is the container port Vault listens on, with protocol
	Port string

	PolicyName string
	Policy     []byte
	// PolicyPath is where the policy is copied to inside the container
	PolicyPath string

	Username string
	Password string

	Role AppRole

	Engines []Engine
	Seeds   []Secret
}

// DefaultFixture returns the fixture expected by the plugin's tests.
func DefaultFixture() Fixture {
	return Fixture{
		Image:      DefaultImage,
		RootToken:  RootToken,
		Port:       vaultcontainer.DefaultPort,
		PolicyName: "admin",
		Policy:     adminPolicy,
		PolicyPath: "/admin.hcl",
		Username:   User,
		Password:   Password,
		Role: AppRole{
			Mount: "approle",
			Name:  "admin",
			Params: []string{
				"secret_id_ttl=10m",
				"token_num_uses=0",
				"token_ttl=4s",
				"token_max_ttl=4s",
				"secret_id_num_uses=1000",
				"policies=admin",
			},
		},
		Engines: []Engine{
			{Path: "kv-v2", Version: 2},
			{Path: "kv-v1", Version: 1},
		},
		Seeds: DefaultSeeds(),
	}
}

// DefaultSeeds returns the six secrets written across the two engines.
func DefaultSeeds() []Secret {
	return []Secret{
		{Mount: "kv-v1", Path: "admin", Version: 1, Data: map[string]string{"key1": "123", "key2": "456"}},
		{Mount: "kv-v1", Path: "dev", Version: 1, Data: map[string]string{"key3": "789"}},
		{Mount: "kv-v2", Path: "admin", Version: 2, Data: map[string]string{"key1": "123", "key2": "456"}},
		{Mount: "kv-v2", Path: "dev", Version: 2, Data: map[string]string{"key3": "789"}},
		{Mount: "kv-v2", Path: "qa", Version: 2, Data: map[string]string{"key2": "321"}},
		{Mount: "kv-v2", Path: "auth-test", Version: 2, Data: map[string]string{"key1": "auth-test"}},
	}
}

// FixtureFromEnv returns DefaultFixture, with the image and root token
// overridden by $VAULT_TEST_IMAGE and $VAULT_TEST_ROOT_TOKEN when set. Both
// can also be read from a file named by the same variable with a _FILE
// suffix.
func FixtureFromEnv() Fixture {
	return fixtureFromEnvFS(os.DirFS("/"))
}

func fixtureFromEnvFS(fsys fs.FS) Fixture {
	fx := DefaultFixture()
	fx.Image = env.GetenvFS(fsys, "VAULT_TEST_IMAGE", fx.Image)
	fx.RootToken = env.GetenvFS(fsys, "VAULT_TEST_ROOT_TOKEN", fx.RootToken)

	return fx
}

// ContainerConfig maps the fixture onto a container configuration, with the
// policy file copied into place.
func (fx Fixture) ContainerConfig(log logrus.FieldLogger) vaultcontainer.Config {
	return vaultcontainer.Config{
		Log:       log,
		Image:     fx.Image,
		RootToken: fx.RootToken,
		Port:      fx.Port,
		Files: []vaultcontainer.File{
			{Content: fx.Policy, ContainerPath: fx.PolicyPath},
		},
	}
}

// DefaultPropertiesPath returns the location of the credentials file in the
// OS temp directory.
func DefaultPropertiesPath() string {
	return filepath.Join(os.TempDir(), PropertiesFile)
}
