// Package toolkit implements the tool sandbox driven by the agent engine:
// shell command execution with a deny-list and timeout, path-confined file
// access, project scaffolding from recipes, and small code-snippet runs.
//
// Tool failures are data, not errors: every operation returns a result struct
// embedding Status, and the engine feeds failed results back to the model so
// it can adapt. Nothing in this package aborts the agent loop.
package toolkit

// Status is the uniform envelope embedded in every tool result.
// Done and Reason let a tool hint that the overall task is complete
// (the scaffold generator uses this on verified success).
type Status struct {
	OK     bool   `json:"ok"`
	Done   bool   `json:"done,omitempty"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Envelope returns the status itself, satisfying Result.
func (s Status) Envelope() Status { return s }

// Result is implemented by every tool result via the embedded Status.
type Result interface {
	Envelope() Status
}

// Failure builds a failed Status carrying an error message.
func Failure(msg string) Status {
	return Status{OK: false, Error: msg}
}
