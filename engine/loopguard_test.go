package engine

import "testing"

func shellDecision(cmd string) Decision {
	return Decision{Tool: ToolShell, Shell: &ShellArgs{Command: cmd}}
}

func TestDetectLoopSingleAction(t *testing.T) {
	actions := []Decision{
		shellDecision("ls"), shellDecision("ls"), shellDecision("ls"), shellDecision("ls"),
	}
	if !detectLoop(actions, 4) {
		t.Error("repeated identical action not detected")
	}
}

func TestDetectLoopAlternatingPair(t *testing.T) {
	a, b := shellDecision("ls"), shellDecision("cat a")
	actions := []Decision{a, b, a, b, a, b}
	if !detectLoop(actions, 6) {
		t.Error("alternating pair not detected")
	}
}

func TestDetectLoopDistinctActions(t *testing.T) {
	actions := []Decision{
		shellDecision("ls"),
		shellDecision("npm install"),
		shellDecision("npm test"),
		shellDecision("cat out.log"),
	}
	if detectLoop(actions, 4) {
		t.Error("distinct actions flagged as loop")
	}
}

func TestDetectLoopShortHistory(t *testing.T) {
	actions := []Decision{shellDecision("ls"), shellDecision("ls")}
	if detectLoop(actions, 4) {
		t.Error("short history must not trigger")
	}
}

func TestDetectLoopSameToolDifferentArgs(t *testing.T) {
	actions := []Decision{
		shellDecision("echo 1"), shellDecision("echo 2"),
		shellDecision("echo 3"), shellDecision("echo 4"),
	}
	if detectLoop(actions, 4) {
		t.Error("argument changes count as progress")
	}
}
