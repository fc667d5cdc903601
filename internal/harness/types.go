package harness

import "github.com/roach88/graphomotor/internal/pipeline"

// Result contains the outcome of running a scenario.
type Result struct {
	// Pass indicates overall test success.
	// True if every step met its expectations.
	Pass bool `json:"pass"`

	// Steps holds one entry per scenario step, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains expectation failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// StepResult is the outcome of one step.
type StepResult struct {
	// ID is the stored analysis ID. Empty when the step failed.
	ID string `json:"id,omitempty"`

	Task string `json:"task,omitempty"`

	// Output is nil when the analysis returned an error.
	Output *pipeline.Output `json:"-"`

	// Err is the analysis error, if any.
	Err error `json:"-"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Pass = false
	r.Errors = append(r.Errors, msg)
}
