package vaulttest

import (
	"fmt"
	"strconv"
)

// StepKind distinguishes commands run inside the container from calls made
// through the Vault HTTP API.
type StepKind string

const (
	KindCommand     StepKind = "command"
	KindCredentials StepKind = "credentials"
)

// Step is one entry of the provisioning sequence.
type Step struct {
	Name string
	Kind StepKind
	// Args is the command run in the container (KindCommand only)
	Args []string
}

// Plan returns the full, ordered provisioning sequence for fx: engine and
// auth setup, the credentials fetch, then the seeded secrets.
func Plan(fx Fixture) []Step {
	steps := SetupSteps(fx)
	steps = append(steps, Step{
		Name: fmt.Sprintf("fetch %s/%s credentials", fx.Role.Mount, fx.Role.Name),
		Kind: KindCredentials,
	})

	return append(steps, SeedSteps(fx)...)
}

// SetupSteps returns the commands that enable the engines and auth methods,
// in order.
func SetupSteps(fx Fixture) []Step {
	steps := make([]Step, 0, len(fx.Engines)+5)

	for _, e := range fx.Engines {
		steps = append(steps, command("enable "+e.Path+" engine",
			"vault", "secrets", "enable", "-path="+e.Path, "-version="+strconv.Itoa(e.Version), "kv"))
	}

	steps = append(steps,
		command("enable userpass auth", "vault", "auth", "enable", "userpass"),
		command("create user "+fx.Username, "vault", "write", "auth/userpass/users/"+fx.Username,
			"password="+fx.Password, "policies="+fx.PolicyName),
		command("write policy "+fx.PolicyName, "vault", "policy", "write", fx.PolicyName, fx.PolicyPath),
		enableAppRole(fx.Role.Mount),
	)

	roleArgs := append([]string{"vault", "write", rolePath(fx.Role)}, fx.Role.Params...)
	steps = append(steps, command("create role "+fx.Role.Name, roleArgs...))

	return steps
}

// SeedSteps returns the `vault kv put` commands for every seeded secret.
func SeedSteps(fx Fixture) []Step {
	steps := make([]Step, 0, len(fx.Seeds))

	for _, s := range fx.Seeds {
		args := append([]string{"vault", "kv", "put", s.FullPath()}, s.Args()...)
		steps = append(steps, command("put "+s.FullPath(), args...))
	}

	return steps
}

func command(name string, args ...string) Step {
	return Step{Name: name, Kind: KindCommand, Args: args}
}

func enableAppRole(mount string) Step {
	if mount == "" || mount == "approle" {
		return command("enable approle auth", "vault", "auth", "enable", "approle")
	}

	return command("enable approle auth at "+mount, "vault", "auth", "enable", "-path="+mount, "approle")
}

func rolePath(r AppRole) string {
	return "auth/" + r.Mount + "/role/" + r.Name
}
