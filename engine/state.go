package engine

import (
	"encoding/json"

	"github.com/forgelabs/jobsmith/llmpool"
)

// State is the working memory of one job. It is the single value threaded
// through the graph nodes, serialized as-is for checkpoints.
//
// Messages and ActionsTaken are append-only. Done is monotonic: once set it
// is never cleared. Pending and ToolResult are transients that live for one
// cycle between the decide node and the record node; LastResult keeps the
// most recent tool result after the transient is cleared, so a resumed job
// still knows what its final action produced.
type State struct {
	JobID        string            `json:"job_id"`
	Task         string            `json:"task"`
	Messages     []llmpool.Message `json:"messages"`
	Pending      *Decision         `json:"pending,omitempty"`
	ToolResult   json.RawMessage   `json:"tool_result,omitempty"`
	LastResult   json.RawMessage   `json:"last_result,omitempty"`
	ActionsTaken []string          `json:"actions_taken"`
	Done         bool              `json:"done"`
	Reason       string            `json:"reason,omitempty"`
	Steps        int               `json:"steps"`
}

// delta is a partial state update returned by a graph node. Nil slices and
// zero values mean "no change"; the engine folds deltas into State in order.
type delta struct {
	appendMessages []llmpool.Message
	pending        *Decision
	clearPending   bool
	toolResult     json.RawMessage
	lastResult     json.RawMessage
	clearResult    bool
	appendAction   string
	done           bool
	reason         string
	stepTaken      bool
}

// apply folds d into s. Done never transitions back to false.
func (s *State) apply(d delta) {
	s.Messages = append(s.Messages, d.appendMessages...)
	if d.pending != nil {
		s.Pending = d.pending
	}
	if d.clearPending {
		s.Pending = nil
	}
	if d.toolResult != nil {
		s.ToolResult = d.toolResult
	}
	if d.lastResult != nil {
		s.LastResult = d.lastResult
	}
	if d.clearResult {
		s.ToolResult = nil
	}
	if d.appendAction != "" {
		s.ActionsTaken = append(s.ActionsTaken, d.appendAction)
	}
	if d.done {
		s.Done = true
	}
	if d.reason != "" {
		s.Reason = d.reason
	}
	if d.stepTaken {
		s.Steps++
	}
}
