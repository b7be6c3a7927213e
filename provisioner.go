package vaulttest

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/hashicorp/vault/api"
	"github.com/jiuli1983/configuration-as-code-plugin/vaultcontainer"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jiuli1983/configuration-as-code-plugin"

// CommandRunner runs a command inside the container hosting the Vault
// server. [*vaultcontainer.Container] is a CommandRunner.
type CommandRunner interface {
	Run(ctx context.Context, args ...string) error
}

var _ CommandRunner = (*vaultcontainer.Container)(nil)

// Provisioner configures a Vault server once. After a successful run, later
// calls do nothing until Reset is called.
//
// A failed run can be retried: when the next call targets the same server
// (same runner, same API address) it resumes at the step that failed, since
// the steps before it have already changed the server. A call targeting any
// other server starts from the first step.
type Provisioner struct {
	log            logrus.FieldLogger
	tracer         trace.Tracer
	creds          *Credentials
	pending        *Credentials
	runner         CommandRunner
	propertiesPath string
	addr           string
	fx             Fixture
	steps          []Step
	next           int
	mu             sync.Mutex
	configured     bool
}

// New returns a Provisioner for fx.
func New(fx Fixture, opts ...Option) *Provisioner {
	cfg := config{propertiesPath: DefaultPropertiesPath()}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.log == nil {
		cfg.log = logrus.StandardLogger()
	}

	if cfg.tp == nil {
		cfg.tp = otel.GetTracerProvider()
	}

	return &Provisioner{
		fx:             fx,
		steps:          Plan(fx),
		log:            cfg.log,
		tracer:         cfg.tp.Tracer(tracerName),
		propertiesPath: cfg.propertiesPath,
	}
}

// Fixture returns the fixture being provisioned.
func (p *Provisioner) Fixture() Fixture {
	return p.fx
}

// Configured reports whether a run has completed.
func (p *Provisioner) Configured() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.configured
}

// Reset forgets any previous run, so the next call to Provision runs the whole
// sequence again. Use it when the server has been replaced.
func (p *Provisioner) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.configured = false
	p.creds = nil
	p.forget()
}

// forget drops the progress of an incomplete run
func (p *Provisioner) forget() {
	p.pending = nil
	p.next = 0
	p.runner = nil
	p.addr = ""
}

// sameServer reports whether runner and client point at the server the saved
// progress belongs to.
func (p *Provisioner) sameServer(runner CommandRunner, client *api.Client) bool {
	if p.runner == nil || client.Address() != p.addr {
		return false
	}

	// comparing runners of a non-comparable type would panic
	t := reflect.TypeOf(runner)
	if t != reflect.TypeOf(p.runner) || !t.Comparable() {
		return false
	}

	return runner == p.runner
}

// Provision runs the provisioning sequence, using runner for the `vault`
// commands and client (which must carry the root token) for the credentials.
// The credentials are returned, and written to the properties file unless
// that was disabled.
//
// On failure the error is a *StepError naming the step (errors from the
// credentials step also wrap ErrCredentials), or wraps ErrPersist. A nil
// runner means there is no server, and ErrRuntimeUnavailable is returned.
func (p *Provisioner) Provision(ctx context.Context, runner CommandRunner, client *api.Client) (Outcome, *Credentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.configured {
		return AlreadyConfigured, p.creds, nil
	}

	if runner == nil {
		return Failed, nil, ErrRuntimeUnavailable
	}

	if client == nil {
		return Failed, nil, fmt.Errorf("vault client must not be nil")
	}

	if !p.sameServer(runner, client) {
		if p.next > 0 {
			p.log.WithField("addr", client.Address()).Info("vault server changed, restarting configuration")
		}

		p.forget()
		p.runner, p.addr = runner, client.Address()
	}

	ctx, span := p.tracer.Start(ctx, "vaulttest.Provision", trace.WithAttributes(Image(p.fx.Image)))
	defer span.End()

	err := p.run(ctx, runner, client)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(OutcomeAttr(Failed))

		p.log.WithError(err).Warn("vault configuration failed")

		return Failed, nil, err
	}

	p.configured = true
	p.creds = p.pending
	p.forget()

	span.SetAttributes(OutcomeAttr(Configured))
	p.log.Info("Vault is configured")

	return Configured, p.creds, nil
}

func (p *Provisioner) run(ctx context.Context, runner CommandRunner, client *api.Client) error {
	if p.next > 0 {
		p.log.WithField("step", p.next+1).Info("resuming vault configuration")
	}

	for ; p.next < len(p.steps); p.next++ {
		if err := p.runStep(ctx, p.next, runner, client); err != nil {
			return err
		}
	}

	if p.propertiesPath == "" {
		return nil
	}

	if err := p.pending.WriteProperties(p.propertiesPath); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	p.log.WithField("path", p.propertiesPath).Debug("wrote approle credentials")

	return nil
}

func (p *Provisioner) runStep(ctx context.Context, i int, runner CommandRunner, client *api.Client) (err error) {
	step := p.steps[i]

	ctx, span := p.tracer.Start(ctx, step.Name, trace.WithAttributes(
		StepIndex(i), StepName(step.Name), StepKindAttr(step.Kind),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}()

	p.log.WithFields(logrus.Fields{"step": i + 1, "name": step.Name}).Debug("provisioning")

	switch step.Kind {
	case KindCommand:
		err = runner.Run(ctx, step.Args...)
	case KindCredentials:
		var creds *Credentials

		creds, err = FetchCredentials(ctx, client, p.fx.Role.Mount, p.fx.Role.Name)
		if err == nil {
			p.pending = creds
		}
	default:
		err = fmt.Errorf("unknown step kind %q", step.Kind)
	}

	if err != nil {
		return &StepError{Index: i, Step: step, Err: err}
	}

	return nil
}

// ProvisionContainer provisions the Vault server running in c, connecting to
// it with the fixture's root token. A nil container (no runtime available)
// returns ErrRuntimeUnavailable.
func (p *Provisioner) ProvisionContainer(ctx context.Context, c *vaultcontainer.Container) (Outcome, *Credentials, error) {
	if c == nil {
		return Failed, nil, ErrRuntimeUnavailable
	}

	if p.Configured() {
		return p.Provision(ctx, c, nil)
	}

	addr, err := c.Address(ctx)
	if err != nil {
		p.log.WithError(err).Warn("vault configuration failed")

		return Failed, nil, err
	}

	client, err := NewClient(addr, p.fx.RootToken)
	if err != nil {
		p.log.WithError(err).Warn("vault configuration failed")

		return Failed, nil, err
	}

	return p.Provision(ctx, c, client)
}

// StartContainer starts a Vault container for fx. When no container runtime
// is available, the returned container is nil and the error is
// ErrRuntimeUnavailable.
func StartContainer(ctx context.Context, fx Fixture, log logrus.FieldLogger) (*vaultcontainer.Container, error) {
	return vaultcontainer.New(ctx, fx.ContainerConfig(log))
}

//nolint:gochecknoglobals
var defaultProvisioner = New(DefaultFixture())

// Provision provisions c with the default fixture, at most once per process.
// See [Provisioner.ProvisionContainer].
func Provision(ctx context.Context, c *vaultcontainer.Container) (Outcome, *Credentials, error) {
	return defaultProvisioner.ProvisionContainer(ctx, c)
}
