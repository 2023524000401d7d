package engine

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// decisionSignature computes a deterministic signature for a decision
// (tool name + hash of arguments).
func decisionSignature(d Decision) string {
	raw, err := json.Marshal(d)
	if err != nil {
		return string(d.Tool)
	}
	h := sha256.Sum256(raw)
	return fmt.Sprintf("%s:%x", d.Tool, h[:8])
}

// recentSignatures returns the signatures of the last count recorded
// decisions in chronological order.
func recentSignatures(actions []Decision, count int) []string {
	start := len(actions) - count
	if start < 0 {
		start = 0
	}
	sigs := make([]string, 0, count)
	for _, d := range actions[start:] {
		sigs = append(sigs, decisionSignature(d))
	}
	return sigs
}

// detectLoop checks if the last windowSize decisions follow a repeating
// pattern of length 1, 2, or 3.
func detectLoop(actions []Decision, windowSize int) bool {
	sigs := recentSignatures(actions, windowSize)
	if len(sigs) < windowSize {
		return false
	}

	for patternLen := 1; patternLen <= 3; patternLen++ {
		if windowSize%patternLen != 0 {
			continue
		}
		pattern := sigs[:patternLen]
		allMatch := true
		for i := patternLen; i < windowSize; i += patternLen {
			for j := 0; j < patternLen; j++ {
				if sigs[i+j] != pattern[j] {
					allMatch = false
					break
				}
			}
			if !allMatch {
				break
			}
		}
		if allMatch {
			return true
		}
	}

	return false
}

// steeringMessage is injected when a loop is detected, nudging the model off
// the repeated action.
const steeringMessage = "You appear to be repeating the same action without progress. " +
	"Change approach: inspect the current state with fs_read or a different shell command, " +
	"or declare the task done if it is already complete."
