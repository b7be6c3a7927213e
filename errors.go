package vaulttest

import (
	"errors"
	"fmt"

	"github.com/jiuli1983/configuration-as-code-plugin/vaultcontainer"
)

// Outcome is the result of a call to Provision.
type Outcome int

const (
	// Failed means the sequence did not complete; the call may be retried.
	Failed Outcome = iota
	// Configured means this call ran the sequence to completion.
	Configured
	// AlreadyConfigured means an earlier call completed the sequence, and
	// nothing was done.
	AlreadyConfigured
)

func (o Outcome) String() string {
	switch o {
	case Failed:
		return "failed"
	case Configured:
		return "configured"
	case AlreadyConfigured:
		return "already configured"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

var (
	// ErrRuntimeUnavailable means no container runtime could be reached, so
	// there is no server to provision.
	ErrRuntimeUnavailable = vaultcontainer.ErrRuntimeUnavailable

	// ErrCredentials is wrapped by errors from retrieving AppRole credentials.
	ErrCredentials = errors.New("approle credential retrieval failed")

	// ErrPersist is wrapped by errors from writing the properties file.
	ErrPersist = errors.New("credentials could not be persisted")
)

// StepError reports the step of the provisioning sequence that failed.
type StepError struct {
	Err   error
	Step  Step
	Index int
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Step.Name, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
