package executor

import (
	"fmt"

	"github.com/vk/picklerun/internal/loc"
)

// StepStatus is the terminal state of a single executed (or skipped) step.
type StepStatus string

const (
	StatusPassed  StepStatus = "passed"
	StatusPending StepStatus = "pending"
	StatusFailed  StepStatus = "failed"
	StatusSkipped StepStatus = "skipped"
)

// FailureType classifies why a step failed.
type FailureType string

const (
	// FailureException covers errors returned or raised by a handler,
	// including recovered panics.
	FailureException FailureType = "exception"
	// FailureInvalidReturn marks a handler whose return value is outside
	// the map / nil / Pending / error contract.
	FailureInvalidReturn FailureType = "invalid-return"
	// FailureProvisioning marks a step whose capability could not be
	// created; the handler was never invoked.
	FailureProvisioning FailureType = "provisioning-failed"
)

// StepError describes a step failure. Class holds the Go type of the
// originating error or panic value, Payload any structured data the
// error carried.
type StepError struct {
	Type    FailureType
	Message string
	Class   string
	Payload any
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// PayloadCarrier lets handler errors attach structured data to the
// step result. Errors are probed with errors.As.
type PayloadCarrier interface {
	ErrorPayload() any
}

// StepResult records the outcome of one plan entry.
type StepResult struct {
	Text     string
	Location loc.Location
	Status   StepStatus

	// Synthetic and Wrapper mirror the executed pickle step. Wrapper
	// results are rolled up from their children, never invoked.
	Synthetic bool
	Wrapper   bool

	Err *StepError
}

// ScenarioResult records the outcome of one run plan.
type ScenarioResult struct {
	PickleID string
	Name     string
	URI      string
	Status   StepStatus
	Steps    []StepResult

	// CleanupErrors holds capability teardown failures. They are
	// reported but never change Status.
	CleanupErrors []error
}

// SuiteCounts aggregates scenario outcomes for the run summary.
type SuiteCounts struct {
	Passed  int
	Failed  int
	Pending int
	Skipped int
}

func (c SuiteCounts) Total() int {
	return c.Passed + c.Failed + c.Pending + c.Skipped
}

// SuiteResult is the outcome of an entire run. Passed is true only
// when every scenario passed.
type SuiteResult struct {
	Passed    bool
	Scenarios []ScenarioResult
	Counts    SuiteCounts

	// CleanupErrors holds teardown failures of suite-lived capabilities.
	CleanupErrors []error
}

func (r *SuiteResult) add(sc ScenarioResult) {
	r.Scenarios = append(r.Scenarios, sc)
	switch sc.Status {
	case StatusPassed:
		r.Counts.Passed++
	case StatusFailed:
		r.Counts.Failed++
	case StatusPending:
		r.Counts.Pending++
	case StatusSkipped:
		r.Counts.Skipped++
	}
}
