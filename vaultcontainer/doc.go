// Package vaultcontainer starts a disposable Vault dev server in a Docker
// container, and runs `vault` CLI commands inside it.
//
// Containers are managed with [github.com/testcontainers/testcontainers-go].
// When no Docker daemon can be reached, [New] returns [ErrRuntimeUnavailable]
// instead of a container, and callers are expected to skip whatever depended
// on the server.
//
// # Usage
//
//	c, err := vaultcontainer.New(ctx, vaultcontainer.Config{
//		Image:     "hashicorp/vault:1.15",
//		RootToken: "root-token",
//	})
//	if errors.Is(err, vaultcontainer.ErrRuntimeUnavailable) {
//		t.Skip("docker is not available")
//	}
//	defer c.Terminate(ctx)
//
//	err = c.Run(ctx, "vault", "secrets", "enable", "-path=kv-v1", "-version=1", "kv")
//
// The container is not terminated automatically - this is the responsibility
// of the caller.
package vaultcontainer
