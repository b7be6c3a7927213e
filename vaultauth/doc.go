// Package vaultauth logs in to a provisioned Vault server with the credentials
// the provisioner created, for use directly with a
// [*github.com/hashicorp/vault/api.Client].
//
// The approle and userpass methods are the ones provided with the Vault API:
//   - [github.com/hashicorp/vault/api/auth/approle]
//   - [github.com/hashicorp/vault/api/auth/userpass]
//
// [EnvAuthMethod] reads the same environment variables as the
// configuration-as-code Vault secret source, so tests can check that what
// they hand to the plugin actually authenticates.
package vaultauth
