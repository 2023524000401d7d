package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forgelabs/jobsmith/llmpool"
	"github.com/forgelabs/jobsmith/toolkit"
)

// ModelClient is the slice of the model pool the engine needs. *llmpool.Failover
// satisfies it; tests substitute scripted fakes.
type ModelClient interface {
	CompleteObject(ctx context.Context, req llmpool.Request, schema map[string]interface{}) (json.RawMessage, error)
}

// OutcomeKind classifies how a job ended.
type OutcomeKind string

const (
	OutcomeDone         OutcomeKind = "done"
	OutcomeStepLimit    OutcomeKind = "step_limit"
	OutcomeCancelled    OutcomeKind = "cancelled"
	OutcomeModelFailure OutcomeKind = "model_failure"
)

// Outcome is the final result of a job run.
type Outcome struct {
	Kind     OutcomeKind
	State    *State
	Artifact *Artifact
	Err      error
}

// Options configure an Engine. Zero values take defaults.
type Options struct {
	// JobID identifies the job; a random id is assigned when empty.
	JobID string
	// Workdir is the job root directory; defaults to "jobs/<job-id>".
	Workdir string
	// AllowedRoot is the widest directory file operations may touch;
	// defaults to the job root (workdir plus output and logs).
	AllowedRoot string
	// MaxSteps caps decision cycles; defaults to 40.
	MaxSteps int
	// CommandTimeout bounds individual shell commands; defaults to 10 minutes.
	CommandTimeout time.Duration
	// NoScaffoldAutoDone disables treating a verified scaffold as task
	// completion.
	NoScaffoldAutoDone bool
	// Recipes overrides the scaffold registry; nil uses the defaults.
	Recipes map[string]toolkit.Recipe
	// Checkpoints persists state between cycles when non-nil. Checkpoint
	// failures degrade to warnings.
	Checkpoints *CheckpointStore
	// LoopWindow is the repeated-action window that triggers steering;
	// defaults to 6.
	LoopWindow int
	// EventBuffer sizes the event channel; defaults to 256.
	EventBuffer int
}

// messageCap bounds the JSON fragments appended to the conversation so a
// single huge tool result cannot flood the context.
const messageCap = 20000

// Engine drives the decide/run/record loop for one job.
type Engine struct {
	model      ModelClient
	opts       Options
	workspace  *Workspace
	runner     *toolkit.Runner
	store      *toolkit.Store
	scaffolder *toolkit.Scaffolder
	evaluator  *toolkit.Evaluator
	packager   *Packager
	emitter    *EventEmitter

	history []Decision
}

// New creates an Engine for a single job.
func New(model ModelClient, opts Options) (*Engine, error) {
	if model == nil {
		return nil, fmt.Errorf("engine: model client is required")
	}
	if opts.JobID == "" {
		opts.JobID = uuid.New().String()[:8]
	}
	if opts.Workdir == "" {
		opts.Workdir = fmt.Sprintf("jobs/%s", opts.JobID)
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 40
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = 10 * time.Minute
	}
	if opts.LoopWindow <= 0 {
		opts.LoopWindow = 6
	}

	ws, err := NewWorkspace(opts.Workdir)
	if err != nil {
		return nil, err
	}
	runner, err := toolkit.NewRunner(ws.Workdir(), opts.CommandTimeout)
	if err != nil {
		return nil, err
	}
	// File access defaults to the whole job tree, so the model can read
	// its own logs and output, not just the scratch directory.
	allowedRoot := opts.AllowedRoot
	if allowedRoot == "" {
		allowedRoot = ws.Root()
	}
	store, err := toolkit.NewStore(ws.Workdir(), allowedRoot)
	if err != nil {
		return nil, err
	}

	return &Engine{
		model:      model,
		opts:       opts,
		workspace:  ws,
		runner:     runner,
		store:      store,
		scaffolder: toolkit.NewScaffolder(runner, opts.Recipes),
		evaluator:  toolkit.NewEvaluator(runner),
		packager:   NewPackager(ws.Workdir(), ws.Output()),
		emitter:    NewEventEmitter(opts.JobID, opts.EventBuffer),
	}, nil
}

// Events exposes the job event stream.
func (e *Engine) Events() <-chan JobEvent { return e.emitter.Events() }

// Workspace returns the job's directory layout.
func (e *Engine) Workspace() *Workspace { return e.workspace }

// JobID returns the job identifier.
func (e *Engine) JobID() string { return e.opts.JobID }

// Run starts a fresh job for task and drives it to completion.
func (e *Engine) Run(ctx context.Context, task string) (*Outcome, error) {
	state := &State{
		JobID: e.opts.JobID,
		Task:  task,
		Messages: []llmpool.Message{
			llmpool.SystemMessage(e.systemPrompt()),
			llmpool.UserMessage(task),
		},
	}
	return e.run(ctx, state)
}

// Resume continues a checkpointed job.
func (e *Engine) Resume(ctx context.Context, state *State) (*Outcome, error) {
	if state == nil {
		return nil, fmt.Errorf("engine: nil state")
	}
	state.Pending = nil
	state.ToolResult = nil
	return e.run(ctx, state)
}

func (e *Engine) run(ctx context.Context, state *State) (*Outcome, error) {
	defer e.emitter.Close()
	e.emitter.Emit(EventJobStart, map[string]interface{}{"task": state.Task, "steps": state.Steps})

	for {
		if kind, halted := e.check(ctx, state); halted {
			return e.finish(kind, state)
		}

		decision, err := e.decide(ctx, state)
		if err != nil {
			if ctx.Err() != nil {
				return e.finish(OutcomeCancelled, state)
			}
			e.emitter.Emit(EventError, map[string]interface{}{"error": err.Error()})
			outcome := &Outcome{Kind: OutcomeModelFailure, State: state, Err: err}
			e.checkpoint(state)
			e.emitter.Emit(EventJobEnd, map[string]interface{}{"outcome": string(OutcomeModelFailure)})
			return outcome, err
		}

		if decision != nil {
			state.apply(delta{pending: decision})
			e.emitter.Emit(EventDecision, map[string]interface{}{"summary": decision.Summary()})
			result := e.runTool(*decision)
			state.apply(result)
			state.apply(e.record(state))
			e.steer(state)
		}

		e.checkpoint(state)
	}
}

// check is the loop gate: done flag, step ceiling, cancellation.
func (e *Engine) check(ctx context.Context, state *State) (OutcomeKind, bool) {
	if state.Done {
		return OutcomeDone, true
	}
	if err := ctx.Err(); err != nil {
		return OutcomeCancelled, true
	}
	if state.Steps >= e.opts.MaxSteps {
		e.emitter.Emit(EventStepLimit, map[string]interface{}{"steps": state.Steps})
		return OutcomeStepLimit, true
	}
	return "", false
}

// decide asks the model for the next structured decision. A malformed but
// parseable response is fed back as a correction instead of failing the job.
func (e *Engine) decide(ctx context.Context, state *State) (*Decision, error) {
	raw, err := e.model.CompleteObject(ctx, llmpool.Request{Messages: state.Messages}, decisionSchema())
	if err != nil {
		return nil, fmt.Errorf("decide: %w", err)
	}

	var d Decision
	if err := json.Unmarshal(raw, &d); err != nil {
		state.apply(delta{
			appendMessages: []llmpool.Message{
				llmpool.ToolMessage(fmt.Sprintf("invalid decision (%v), respond again with a valid tool object", err)),
			},
			stepTaken: true,
		})
		return nil, nil
	}
	return &d, nil
}

// runTool executes the pending decision and returns the result delta.
// The tool discriminant was validated at unmarshal time, so a missing
// variant here is a programming error.
//
// Tools run under their own timeouts, not the job context: cancellation is
// observed at the check boundary, never by pre-empting a command mid-flight.
func (e *Engine) runTool(d Decision) delta {
	ctx := context.Background()
	e.emitter.Emit(EventToolStart, map[string]interface{}{"tool": string(d.Tool)})

	var (
		result toolkit.Result
		done   bool
		reason string
	)
	switch d.Tool {
	case ToolShell:
		result = e.runner.Run(ctx, d.Shell.Command, 0)
	case ToolFsRead:
		result = e.store.Read(d.FsRead.Path)
	case ToolFsWrite:
		result = e.store.Write(d.FsWrite.Path, d.FsWrite.Content)
	case ToolScaffold:
		res := e.scaffolder.Create(ctx, d.Scaffold.RecipeID, d.Scaffold.Name)
		if res.Done && e.opts.NoScaffoldAutoDone {
			res.Done = false
		}
		result = res
	case ToolSnippet:
		result = e.evaluator.Eval(ctx, d.Snippet.Language, d.Snippet.Code, 0)
	case ToolDone:
		done = true
		reason = d.Done.Reason
		result = toolkit.Status{OK: true, Done: true, Reason: reason}
	default:
		panic(fmt.Sprintf("engine: unroutable tool %q", d.Tool))
	}

	env := result.Envelope()
	e.emitter.Emit(EventToolEnd, map[string]interface{}{
		"tool": string(d.Tool),
		"ok":   env.OK,
	})
	if env.Done {
		done = true
		if reason == "" {
			reason = env.Reason
		}
	}

	raw, err := json.Marshal(result)
	if err != nil {
		raw = []byte(fmt.Sprintf(`{"ok":false,"error":%q}`, err.Error()))
	}
	return delta{toolResult: raw, done: done, reason: reason}
}

// record folds the executed cycle into the conversation: the decision as an
// assistant message, the tool result as a tool message, one action line, and
// a step. Transients are cleared.
func (e *Engine) record(state *State) delta {
	d := *state.Pending
	e.history = append(e.history, d)

	decisionJSON, err := json.Marshal(d)
	if err != nil {
		decisionJSON = []byte(d.Summary())
	}
	resultText := toolkit.TailLimit(string(state.ToolResult), messageCap)

	e.workspace.WriteStepLog(state.Steps+1, fmt.Sprintf("decision: %s\nresult: %s\n", decisionJSON, resultText))

	return delta{
		appendMessages: []llmpool.Message{
			llmpool.AssistantMessage(toolkit.TailLimit(string(decisionJSON), messageCap)),
			llmpool.ToolMessage(resultText),
		},
		appendAction: d.Summary(),
		lastResult:   state.ToolResult,
		clearPending: true,
		clearResult:  true,
		stepTaken:    true,
	}
}

// steer injects a corrective message when the recent decisions repeat.
func (e *Engine) steer(state *State) {
	if !detectLoop(e.history, e.opts.LoopWindow) {
		return
	}
	e.emitter.Emit(EventLoopDetected, map[string]interface{}{"window": e.opts.LoopWindow})
	state.apply(delta{appendMessages: []llmpool.Message{llmpool.UserMessage(steeringMessage)}})
	e.history = nil
}

// checkpoint persists state, degrading to a warning when the store is
// unavailable.
func (e *Engine) checkpoint(state *State) {
	if e.opts.Checkpoints == nil {
		return
	}
	if err := e.opts.Checkpoints.Save(state); err != nil {
		e.emitter.Emit(EventWarning, map[string]interface{}{"checkpoint": err.Error()})
		return
	}
	e.emitter.Emit(EventCheckpoint, map[string]interface{}{"steps": state.Steps})
}

// finish packages completed or step-limited jobs and closes out the run.
func (e *Engine) finish(kind OutcomeKind, state *State) (*Outcome, error) {
	outcome := &Outcome{Kind: kind, State: state}

	if kind == OutcomeDone || kind == OutcomeStepLimit {
		artifact, err := e.packager.Package(state)
		if err != nil {
			e.emitter.Emit(EventWarning, map[string]interface{}{"package": err.Error()})
		} else {
			outcome.Artifact = artifact
			e.emitter.Emit(EventPackaged, map[string]interface{}{
				"zip":   artifact.ZipPath,
				"files": artifact.Files,
			})
		}
	}

	e.checkpoint(state)
	e.emitter.Emit(EventJobEnd, map[string]interface{}{"outcome": string(kind)})
	return outcome, nil
}

// systemPrompt describes the decision contract and the available tools.
func (e *Engine) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You are an autonomous coding agent working inside a sandboxed project directory.\n")
	b.WriteString("Each turn, respond with exactly one JSON object selecting one tool:\n\n")
	b.WriteString(`  {"tool": "<name>", "args": {...}}` + "\n\n")
	b.WriteString("Tools:\n")
	b.WriteString("- shell: run a bash command in the workdir. args: {\"command\"}\n")
	b.WriteString("- fs_read: read a text file. args: {\"path\"}\n")
	b.WriteString("- fs_write: write a text file, creating parents. args: {\"path\", \"content\"}\n")
	b.WriteString("- scaffold: generate a project from a recipe. args: {\"recipe_id\", \"name\"}\n")
	b.WriteString("- snippet: evaluate inline code. args: {\"language\": \"python\"|\"node\", \"code\"}\n")
	b.WriteString("- done: declare the task complete. args: {\"reason\"}\n\n")
	b.WriteString("Scaffold recipes:\n")
	for _, r := range e.scaffolder.Recipes() {
		fmt.Fprintf(&b, "- %s: %s\n", r.ID, r.Description)
	}
	b.WriteString("\nPaths are relative to the workdir. Risky commands are blocked. ")
	b.WriteString("Tool failures come back as JSON results; adjust and continue. ")
	b.WriteString("Declare done as soon as the task is satisfied.")
	return b.String()
}

// decisionSchema returns the structured-output schema as the pool expects it.
func decisionSchema() map[string]interface{} {
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(DecisionSchema), &m); err != nil {
		panic("engine: invalid decision schema: " + err.Error())
	}
	return m
}
