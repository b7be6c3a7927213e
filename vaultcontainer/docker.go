package vaultcontainer

import (
	"context"

	"github.com/hashicorp/go-version"
	"github.com/testcontainers/testcontainers-go"
)

// MinAPIVersion is the oldest Docker Engine API version accepted by
// [HasDockerDaemon].
const MinAPIVersion = "1.10"

// HasDockerDaemon reports whether a Docker daemon is reachable and speaks at
// least [MinAPIVersion] of the Engine API. It never fails - any problem
// reaching the daemon is reported as false.
func HasDockerDaemon(ctx context.Context) (ok bool) {
	// testcontainers panics when it can't find any docker host at all
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	cli, err := testcontainers.NewDockerClientWithOpts(ctx)
	if err != nil {
		return false
	}
	defer cli.Close()

	v, err := cli.ServerVersion(ctx)
	if err != nil {
		return false
	}

	return apiVersionAtLeast(v.APIVersion, MinAPIVersion)
}

func apiVersionAtLeast(actual, minimum string) bool {
	a, err := version.NewVersion(actual)
	if err != nil {
		return false
	}

	m, err := version.NewVersion(minimum)
	if err != nil {
		return false
	}

	return a.GreaterThanOrEqual(m)
}
