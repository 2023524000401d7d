package toolkit

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	r, err := NewRunner(t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return NewEvaluator(r)
}

func TestEvalPython(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed")
	}
	e := newTestEvaluator(t)
	res := e.Eval(context.Background(), "python", "print(2 + 2)", 0)
	if !res.OK {
		t.Fatalf("eval failed: %+v", res)
	}
	if strings.TrimSpace(res.Stdout) != "4" {
		t.Errorf("stdout = %q", res.Stdout)
	}
}

func TestEvalPythonQuoting(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed")
	}
	e := newTestEvaluator(t)
	res := e.Eval(context.Background(), "python", "print('it''s fine')", 0)
	if !res.OK {
		t.Fatalf("eval failed: %+v", res)
	}
	if !strings.Contains(res.Stdout, "its fine") {
		t.Errorf("stdout = %q", res.Stdout)
	}
}

func TestEvalUnsupportedLanguage(t *testing.T) {
	e := newTestEvaluator(t)
	res := e.Eval(context.Background(), "ruby", "puts 1", 0)
	if res.OK {
		t.Fatal("expected failure for unsupported language")
	}
	if !strings.Contains(res.Error, "unsupported language") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestEvalErrorIsData(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed")
	}
	e := newTestEvaluator(t)
	res := e.Eval(context.Background(), "python", "raise SystemExit(2)", 0)
	if res.OK {
		t.Fatal("expected failure")
	}
	if res.ExitCode != 2 {
		t.Errorf("exit code = %d", res.ExitCode)
	}
}

func TestLanguages(t *testing.T) {
	e := newTestEvaluator(t)
	langs := e.Languages()
	if len(langs) != 2 || langs[0] != "node" || langs[1] != "python" {
		t.Errorf("languages = %v", langs)
	}
}
