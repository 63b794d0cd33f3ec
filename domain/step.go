package domain

import "fmt"

type StepID string

// StepStatus is the outcome variant of a workflow step. Soft failures are
// explicit results instead of interleaved prompts, so the driver can run
// non-interactively and still report what degraded.
type StepStatus int

const (
	// StatusSuccess: the step did its work (or confirmed it was already done).
	StatusSuccess StepStatus = iota
	// StatusRecovered: the step succeeded after remediation actions.
	StatusRecovered
	// StatusDegraded: the step failed but the installation can continue
	// with a manual fallback; recorded and shown in the final report.
	StatusDegraded
	// StatusFatal: the step failed hard; the driver stops immediately.
	StatusFatal
	// StatusHalt: the step requires the process to exit (reboot pending);
	// not an error.
	StatusHalt
)

type StepResult struct {
	Status StepStatus
	Err    error
	Note   string
}

func Success() StepResult {
	return StepResult{Status: StatusSuccess}
}

func Recovered(note string) StepResult {
	return StepResult{Status: StatusRecovered, Note: note}
}

func Degraded(note string, err error) StepResult {
	return StepResult{Status: StatusDegraded, Err: err, Note: note}
}

func Fatal(err error) StepResult {
	return StepResult{Status: StatusFatal, Err: err}
}

func Fatalf(format string, args ...interface{}) StepResult {
	return Fatal(fmt.Errorf(format, args...))
}

func Halt() StepResult {
	return StepResult{Status: StatusHalt}
}

// Step is one unit of the provisioning workflow.
type Step struct {
	ID          StepID
	Name        string
	Description string

	// Check reports whether the step's effect is already in place, in
	// which case Run is skipped. A nil Check always runs.
	Check func(ctx *ExecutionContext) bool

	Run func(ctx *ExecutionContext) StepResult
}
