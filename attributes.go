package vaulttest

import "go.opentelemetry.io/otel/attribute"

const (
	stepIndexKey = attribute.Key("vaulttest.step.index")
	stepNameKey  = attribute.Key("vaulttest.step.name")
	stepKindKey  = attribute.Key("vaulttest.step.kind")
	imageKey     = attribute.Key("vaulttest.image")
	outcomeKey   = attribute.Key("vaulttest.outcome")
)

// The position of the step in the provisioning sequence, starting at 1.
//
// Type: int
// Examples: 1, 14
func StepIndex(i int) attribute.KeyValue {
	return stepIndexKey.Int(i + 1)
}

// The name of the step.
//
// Type: string
// Examples: "enable kv-v2 engine", "put kv-v2/qa"
func StepName(name string) attribute.KeyValue {
	return stepNameKey.String(name)
}

// Whether the step ran a command in the container or called the API.
//
// Type: string
// Examples: "command", "credentials"
func StepKindAttr(k StepKind) attribute.KeyValue {
	return stepKindKey.String(string(k))
}

// The container image the server runs.
//
// Type: string
// Examples: "hashicorp/vault:1.15"
func Image(ref string) attribute.KeyValue {
	return imageKey.String(ref)
}

// The outcome of a provisioning call.
//
// Type: string
// Examples: "configured", "failed"
func OutcomeAttr(o Outcome) attribute.KeyValue {
	return outcomeKey.String(o.String())
}
