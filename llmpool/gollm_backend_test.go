package llmpool

import (
	"strings"
	"testing"
)

func TestFlattenMessages(t *testing.T) {
	req := Request{Messages: []Message{
		SystemMessage("you are a tool-picker"),
		UserMessage("build an app"),
		AssistantMessage(`{"tool":"shell"}`),
		ToolMessage(`{"ok":true}`),
	}}
	system, prompt := flattenMessages(req)
	if system != "you are a tool-picker" {
		t.Errorf("system = %q", system)
	}
	for _, want := range []string{"build an app", "[Assistant]: ", "[Tool Result]: "} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q: %q", want, prompt)
		}
	}
	if strings.Contains(prompt, "single JSON object") {
		t.Error("JSON directive added without a response format")
	}
}

func TestFlattenMessagesHonorsResponseFormat(t *testing.T) {
	req := Request{
		Messages:       []Message{UserMessage("decide")},
		ResponseFormat: &ResponseFormat{Type: "json_schema", Strict: true},
	}
	_, prompt := flattenMessages(req)
	if !strings.HasSuffix(prompt, "Respond with a single JSON object and nothing else.") {
		t.Errorf("json_schema format not enforced: %q", prompt)
	}

	req.ResponseFormat = &ResponseFormat{Type: "text"}
	_, prompt = flattenMessages(req)
	if strings.Contains(prompt, "single JSON object") {
		t.Errorf("text format must not add the directive: %q", prompt)
	}
}

func TestFlattenMessagesEmptyPrompt(t *testing.T) {
	_, prompt := flattenMessages(Request{Messages: []Message{SystemMessage("sys only")}})
	if prompt != "Hello" {
		t.Errorf("prompt = %q", prompt)
	}
}
