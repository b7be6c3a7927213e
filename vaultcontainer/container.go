package vaultcontainer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	tcexec "github.com/testcontainers/testcontainers-go/exec"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultPort is the port the Vault dev server listens on inside the
	// container.
	DefaultPort = "8200/tcp"

	// SealStatusPath is polled until Vault answers 200, which the dev server
	// only does once it is unsealed.
	SealStatusPath = "/v1/sys/seal-status"

	defaultStartupTimeout = 60 * time.Second
)

// ErrRuntimeUnavailable is returned by [New] when no container runtime can be
// reached.
var ErrRuntimeUnavailable = errors.New("container runtime unavailable")

// File is copied into the container before it starts.
type File struct {
	Content       []byte
	ContainerPath string
	Mode          int64
}

// Config describes the Vault container to start.
type Config struct {
	// Log receives a debug entry for every command run in the container.
	// Defaults to the logrus standard logger.
	Log logrus.FieldLogger

	// Probe reports whether a container runtime is reachable. Defaults to
	// [HasDockerDaemon].
	Probe func(ctx context.Context) bool

	Image     string
	RootToken string

	// Port is the container port (with protocol) Vault listens on. Defaults
	// to [DefaultPort].
	Port string

	Files []File

	StartupTimeout time.Duration
}

func (cfg Config) withDefaults() Config {
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}

	if cfg.Probe == nil {
		cfg.Probe = HasDockerDaemon
	}

	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}

	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = defaultStartupTimeout
	}

	return cfg
}

// request builds the testcontainers request for a Vault dev server
func (cfg Config) request() testcontainers.ContainerRequest {
	port := nat.Port(cfg.Port)
	listen := "0.0.0.0:" + port.Port()

	files := make([]testcontainers.ContainerFile, 0, len(cfg.Files))
	for _, f := range cfg.Files {
		mode := f.Mode
		if mode == 0 {
			mode = 0o644
		}

		files = append(files, testcontainers.ContainerFile{
			Reader:            bytes.NewReader(f.Content),
			ContainerFilePath: f.ContainerPath,
			FileMode:          mode,
		})
	}

	return testcontainers.ContainerRequest{
		Image:        cfg.Image,
		ExposedPorts: []string{cfg.Port},
		Env: map[string]string{
			"VAULT_DEV_ROOT_TOKEN_ID":  cfg.RootToken,
			"VAULT_DEV_LISTEN_ADDRESS": listen,
			// used by the vault CLI when running commands in the container
			"VAULT_ADDR":  "http://127.0.0.1:" + port.Port(),
			"VAULT_TOKEN": cfg.RootToken,
			"SKIP_SETCAP": "true",
		},
		Files: files,
		WaitingFor: wait.ForHTTP(SealStatusPath).
			WithPort(port).
			WithStatusCodeMatcher(func(status int) bool {
				return status == http.StatusOK
			}).
			WithStartupTimeout(cfg.StartupTimeout),
	}
}

// execer is the part of testcontainers.Container needed to run commands
type execer interface {
	Exec(ctx context.Context, cmd []string, options ...tcexec.ProcessOption) (int, io.Reader, error)
}

// Container is a running Vault dev server.
type Container struct {
	tc     testcontainers.Container
	execer execer
	log    logrus.FieldLogger
	port   nat.Port
}

// New starts a Vault container and waits for it to be ready. If no container
// runtime is available, it returns ErrRuntimeUnavailable and a nil Container,
// without attempting to contact the runtime any further.
func New(ctx context.Context, cfg Config) (*Container, error) {
	cfg = cfg.withDefaults()

	if cfg.Image == "" {
		return nil, fmt.Errorf("vault container: image must be set")
	}

	if !cfg.Probe(ctx) {
		return nil, ErrRuntimeUnavailable
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: cfg.request(),
		Started:          true,
	})
	if err != nil {
		if c != nil {
			_ = c.Terminate(context.WithoutCancel(ctx))
		}

		return nil, fmt.Errorf("start vault container %s: %w", cfg.Image, err)
	}

	cfg.Log.WithFields(logrus.Fields{
		"image":     cfg.Image,
		"container": shortID(c.GetContainerID()),
	}).Info("vault container started")

	return &Container{
		tc:     c,
		execer: c,
		log:    cfg.Log,
		port:   nat.Port(cfg.Port),
	}, nil
}

// Address returns the URL at which the Vault API is reachable from the host,
// for example "http://localhost:32771".
func (c *Container) Address(ctx context.Context) (string, error) {
	addr, err := c.tc.PortEndpoint(ctx, c.port, "http")
	if err != nil {
		return "", fmt.Errorf("vault endpoint: %w", err)
	}

	return addr, nil
}

// ID returns the container ID.
func (c *Container) ID() string {
	return c.tc.GetContainerID()
}

// Terminate stops and removes the container.
func (c *Container) Terminate(ctx context.Context) error {
	if err := c.tc.Terminate(ctx); err != nil {
		return fmt.Errorf("terminate vault container: %w", err)
	}

	return nil
}

// Run executes args inside the container and waits for it to finish. A
// non-zero exit status is returned as an *ExecError.
func (c *Container) Run(ctx context.Context, args ...string) error {
	if len(args) == 0 {
		return fmt.Errorf("exec: no command given")
	}

	c.log.WithField("cmd", strings.Join(args, " ")).Debug("exec in vault container")

	code, r, err := c.execer.Exec(ctx, args, tcexec.Multiplexed())
	if err != nil {
		return fmt.Errorf("exec %s: %w", args[0], err)
	}

	var out []byte
	if r != nil {
		out, err = io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read output of %s: %w", args[0], err)
		}
	}

	if code != 0 {
		return &ExecError{
			Args:     args,
			ExitCode: code,
			Output:   strings.TrimSpace(string(out)),
		}
	}

	return nil
}

// ExecError reports a command that exited with a non-zero status.
type ExecError struct {
	Args     []string
	Output   string
	ExitCode int
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("%q exited with status %d", strings.Join(e.Args, " "), e.ExitCode)
	if e.Output != "" {
		msg += ": " + e.Output
	}

	return msg
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}

	return id
}
