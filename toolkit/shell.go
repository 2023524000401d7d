package toolkit

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"syscall"
	"time"
)

// Exit codes for synthesized failures, matching shell conventions:
// 124 is the timeout(1) exit code, 126 means "command found but not runnable".
const (
	ExitTimeout = 124
	ExitDenied  = 126
)

// denyPatterns match commands the sandbox refuses to run: destructive
// filesystem operations, privilege and user management, remote shells and
// mounts, the classic fork bomb, raw network fetchers, and restricted path
// prefixes. A match short-circuits before the process is ever started.
var denyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\brm\s+-rf\b`),
	regexp.MustCompile(`(?i)\bmkfs\b`),
	regexp.MustCompile(`(?i)\bdd\s+if=`),
	regexp.MustCompile(`(?i)\bchmod\s+777\b`),
	regexp.MustCompile(`(?i)\bchown\s+-R\b`),
	regexp.MustCompile(`(?i)\bmount\b`),
	regexp.MustCompile(`(?i)\bssh\b`),
	regexp.MustCompile(`(?i)/(etc|root)\b`),
	regexp.MustCompile(`(?i)\b(adduser|useradd|deluser|userdel)\b`),
	regexp.MustCompile(`:\(\)\{:\|:&\};:`),
	regexp.MustCompile(`(?i)\b(curl|wget)\s+http`),
}

// IsDenied reports whether command matches the deny-list.
func IsDenied(command string) bool {
	for _, pat := range denyPatterns {
		if pat.MatchString(command) {
			return true
		}
	}
	return false
}

// ShellResult is the outcome of one command execution.
type ShellResult struct {
	Status
	Command  string `json:"command"`
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
}

// Runner executes shell command strings in a fixed working directory.
// Commands run through `bash -lc` so chaining (`cd app && npm install`)
// works. The deny-list and path confinement are advisory safety nets, not a
// security boundary.
type Runner struct {
	dir     string
	timeout time.Duration
}

// NewRunner creates a Runner rooted at dir with the given default timeout.
// The directory is created if missing.
func NewRunner(dir string, timeout time.Duration) (*Runner, error) {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("runner: create workdir: %w", err)
	}
	return &Runner{dir: dir, timeout: timeout}, nil
}

// Dir returns the working directory commands execute in.
func (r *Runner) Dir() string { return r.dir }

// Run executes command, honoring timeout when positive, else the default.
// Policy violations and timeouts come back as failed results, never as
// Go errors.
func (r *Runner) Run(ctx context.Context, command string, timeout time.Duration) ShellResult {
	if IsDenied(command) {
		return ShellResult{
			Status:   Failure("blocked by policy: risky command"),
			Command:  command,
			ExitCode: ExitDenied,
			Stderr:   "blocked by policy: risky command",
		}
	}

	t := timeout
	if t <= 0 {
		t = r.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, t)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", "-lc", command)
	cmd.Dir = r.dir
	// Own process group so a timed-out pipeline dies with its children.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		if cmd.Process != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		return ShellResult{
			Status:   Failure(fmt.Sprintf("timeout after %s", t)),
			Command:  command,
			ExitCode: ExitTimeout,
			Stdout:   HeadTailLimit(stdout.String(), MaxStreamChars),
			Stderr:   fmt.Sprintf("timeout after %s", t),
		}
	}

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return ShellResult{
				Status:   Failure(err.Error()),
				Command:  command,
				ExitCode: -1,
				Stderr:   err.Error(),
			}
		}
	}

	// Stdout keeps both ends: the opening banner and the trailing error of a
	// long command both matter. Stderr tails; errors live at the end.
	return ShellResult{
		Status:   Status{OK: exitCode == 0},
		Command:  command,
		ExitCode: exitCode,
		Stdout:   HeadTailLimit(stdout.String(), MaxStreamChars),
		Stderr:   TailLimit(stderr.String(), MaxStreamChars),
	}
}
