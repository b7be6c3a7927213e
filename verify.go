package vaulttest

import (
	"context"
	"fmt"
	"maps"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/vault/api"
	"github.com/jiuli1983/configuration-as-code-plugin/internal/vaulterr"
)

// ReadSecret reads the current value of a seeded secret, with every value
// rendered as a string.
func ReadSecret(ctx context.Context, client *api.Client, s Secret) (map[string]string, error) {
	var (
		kv  *api.KVSecret
		err error
	)

	switch s.Version {
	case 1:
		kv, err = client.KVv1(s.Mount).Get(ctx, s.Path)
	case 2:
		kv, err = client.KVv2(s.Mount).Get(ctx, s.Path)
	default:
		return nil, fmt.Errorf("%s: unsupported kv version %d", s.FullPath(), s.Version)
	}

	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.FullPath(), vaulterr.Flatten(err))
	}

	data := make(map[string]string, len(kv.Data))
	for k, v := range kv.Data {
		data[k] = fmt.Sprint(v)
	}

	return data, nil
}

// VerifySeeds reads every secret back and checks it holds exactly the seeded
// data. All mismatches are reported together.
func VerifySeeds(ctx context.Context, client *api.Client, seeds []Secret) error {
	var result *multierror.Error

	for _, s := range seeds {
		got, err := ReadSecret(ctx, client, s)
		if err != nil {
			result = multierror.Append(result, err)

			continue
		}

		if !maps.Equal(got, s.Data) {
			result = multierror.Append(result,
				fmt.Errorf("%s: got %v, want %v", s.FullPath(), got, s.Data))
		}
	}

	return result.ErrorOrNil()
}
