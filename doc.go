// Package vaulttest provisions a disposable Vault server for the integration
// tests of the configuration-as-code Vault secret source.
//
// A Vault dev server is started in a container (see the [vaultcontainer]
// package), and a fixed sequence of `vault` commands is run against it:
//
//   - kv engines are enabled at kv-v2 (version 2) and kv-v1 (version 1)
//   - the userpass auth method is enabled, and an "admin" user created
//   - the "admin" policy is written
//   - the approle auth method is enabled, and an "admin" role created
//   - AppRole credentials are generated through the Vault API
//   - six secrets are written across the two engines
//
// The credentials are returned to the caller, and also written to
// JCasC_temp_approle_secret.prop in the OS temp directory, for tests that read
// them from there.
//
// # Usage
//
//	c, err := vaulttest.StartContainer(ctx, vaulttest.DefaultFixture(), nil)
//	if errors.Is(err, vaulttest.ErrRuntimeUnavailable) {
//		t.Skip("docker is not available")
//	}
//	defer c.Terminate(ctx)
//
//	outcome, creds, err := vaulttest.Provision(ctx, c)
//
// [Provision] configures the server at most once per process. For control
// over that state, use a [Provisioner] directly; it can be [Provisioner.Reset].
package vaulttest
