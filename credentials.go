package vaulttest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/vault/api"
	"github.com/jiuli1983/configuration-as-code-plugin/internal/vaulterr"
	"github.com/magiconair/properties"
)

// Keys written to the properties file.
const (
	PropRoleID   = "CASC_VAULT_APPROLE"
	PropSecretID = "CASC_VAULT_APPROLE_SECRET"
)

// Credentials are the generated AppRole role and secret IDs.
type Credentials struct {
	RoleID   string
	SecretID string
}

// FetchCredentials reads the role ID of the given AppRole role and generates a
// new secret ID for it. The client must be allowed to manage the role (the
// root token is).
func FetchCredentials(ctx context.Context, client *api.Client, mount, role string) (*Credentials, error) {
	p := rolePath(AppRole{Mount: mount, Name: role})

	s, err := client.Logical().ReadWithContext(ctx, p+"/role-id")
	if err != nil {
		return nil, fmt.Errorf("%w: read %s/role-id: %w", ErrCredentials, p, vaulterr.Flatten(err))
	}

	roleID, err := dataString(s, "role_id")
	if err != nil {
		return nil, fmt.Errorf("%w: read %s/role-id: %w", ErrCredentials, p, err)
	}

	s, err = client.Logical().WriteWithContext(ctx, p+"/secret-id", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: write %s/secret-id: %w", ErrCredentials, p, vaulterr.Flatten(err))
	}

	secretID, err := dataString(s, "secret_id")
	if err != nil {
		return nil, fmt.Errorf("%w: write %s/secret-id: %w", ErrCredentials, p, err)
	}

	return &Credentials{RoleID: roleID, SecretID: secretID}, nil
}

func dataString(s *api.Secret, key string) (string, error) {
	if s == nil || s.Data == nil {
		return "", fmt.Errorf("empty response")
	}

	v, ok := s.Data[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("response has no %s", key)
	}

	return v, nil
}

// Properties returns the credentials as properties, in the order they are
// written to the file.
func (c *Credentials) Properties() *properties.Properties {
	p := properties.NewProperties()
	p.DisableExpansion = true

	// Set only fails on circular expansion, which is disabled
	_, _, _ = p.Set(PropRoleID, c.RoleID)
	_, _, _ = p.Set(PropSecretID, c.SecretID)

	return p
}

// WriteProperties writes the credentials to path in the Java properties
// format. The file is replaced atomically, so a failed write leaves any
// previous content in place.
func (c *Credentials) WriteProperties(path string) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}

	tmp := f.Name()

	// same header java.util.Properties#store writes
	_, err = fmt.Fprintf(f, "#%s\n", time.Now().Format("Mon Jan 02 15:04:05 MST 2006"))
	if err == nil {
		_, err = c.Properties().Write(f, properties.ISO_8859_1)
	}

	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}

// ReadProperties reads credentials written by WriteProperties.
func ReadProperties(path string) (*Credentials, error) {
	l := &properties.Loader{Encoding: properties.ISO_8859_1, DisableExpansion: true}

	p, err := l.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	c := &Credentials{}

	var ok bool
	if c.RoleID, ok = p.Get(PropRoleID); !ok {
		return nil, fmt.Errorf("%s: missing %s", path, PropRoleID)
	}

	if c.SecretID, ok = p.Get(PropSecretID); !ok {
		return nil, fmt.Errorf("%s: missing %s", path, PropSecretID)
	}

	return c, nil
}
