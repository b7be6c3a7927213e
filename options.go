package vaulttest

import (
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Provisioner.
type Option interface {
	apply(*config)
}

type config struct {
	log            logrus.FieldLogger
	tp             trace.TracerProvider
	propertiesPath string
}

type optionFunc func(*config)

func (o optionFunc) apply(c *config) {
	o(c)
}

// WithLogger sets the logger. If none is specified, the logrus standard
// logger is used.
func WithLogger(log logrus.FieldLogger) Option {
	return optionFunc(func(cfg *config) {
		if log != nil {
			cfg.log = log
		}
	})
}

// WithTracerProvider specifies a tracer provider to use for creating a tracer.
// If none is specified, the global provider is used (see [otel.GetTracerProvider]).
func WithTracerProvider(provider trace.TracerProvider) Option {
	return optionFunc(func(cfg *config) {
		if provider != nil {
			cfg.tp = provider
		}
	})
}

// WithPropertiesPath sets where the credentials are written after a
// successful run. The default is [DefaultPropertiesPath]. An empty path
// disables writing the file.
func WithPropertiesPath(path string) Option {
	return optionFunc(func(cfg *config) {
		cfg.propertiesPath = path
	})
}
