package toolkit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SnippetResult is the outcome of one inline code evaluation.
type SnippetResult struct {
	Status
	Language string `json:"language"`
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
}

// snippetRunners maps a language id to the interpreter invocation that
// evaluates inline source.
var snippetRunners = map[string][]string{
	"python": {"python3", "-c"},
	"node":   {"node", "-e"},
}

// Evaluator runs short inline code snippets through an interpreter, with the
// same deny-list, timeout, and truncation discipline as shell commands.
type Evaluator struct {
	runner *Runner
}

// NewEvaluator creates an Evaluator over runner.
func NewEvaluator(runner *Runner) *Evaluator {
	return &Evaluator{runner: runner}
}

// Languages lists the supported snippet languages.
func (e *Evaluator) Languages() []string {
	return []string{"node", "python"}
}

// Eval runs code under the named language's interpreter. Unknown languages
// fail without executing anything.
func (e *Evaluator) Eval(ctx context.Context, language, code string, timeout time.Duration) SnippetResult {
	invocation, ok := snippetRunners[language]
	if !ok {
		return SnippetResult{
			Status:   Failure(fmt.Sprintf("unsupported language %q, available: node, python", language)),
			Language: language,
			ExitCode: ExitDenied,
		}
	}
	command := fmt.Sprintf("%s %s %s", invocation[0], invocation[1], shellQuote(code))
	res := e.runner.Run(ctx, command, timeout)
	return SnippetResult{
		Status:   res.Status,
		Language: language,
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}
}

// shellQuote single-quotes s for bash, escaping embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
