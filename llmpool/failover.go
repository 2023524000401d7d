package llmpool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Failover holds an ordered list of rate-limited backends and tries each in
// turn. Only rate-limit rejections advance the chain; any other failure is
// the caller's problem and propagates unchanged.
type Failover struct {
	backends []*RateLimited
}

// NewFailover builds a chain from the given backends, tried in order.
func NewFailover(backends ...*RateLimited) *Failover {
	return &Failover{backends: backends}
}

// Backends returns the chain members in order.
func (f *Failover) Backends() []*RateLimited {
	out := make([]*RateLimited, len(f.backends))
	copy(out, f.backends)
	return out
}

// Complete tries each backend in order until one accepts the call.
func (f *Failover) Complete(ctx context.Context, req Request) (*Response, error) {
	if len(f.backends) == 0 {
		return nil, &ConfigurationError{SDKError: SDKError{Message: "no backends configured"}}
	}

	var lastErr error
	for _, b := range f.backends {
		resp, err := b.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !IsRateLimit(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// CompleteObject mirrors Complete over the structured-output variant of each
// backend, considering only backends that support structured output. The
// response text is parsed into a raw JSON object; a response that does not
// parse is a *NoObjectGeneratedError.
func (f *Failover) CompleteObject(ctx context.Context, req Request, schema map[string]interface{}) (json.RawMessage, error) {
	structured := make([]*RateLimited, 0, len(f.backends))
	for _, b := range f.backends {
		if b.SupportsStructuredOutput() {
			structured = append(structured, b)
		}
	}
	if len(structured) == 0 {
		return nil, &ConfigurationError{SDKError: SDKError{Message: "no structured-output backends configured"}}
	}

	var lastErr error
	for _, b := range structured {
		resp, err := b.CompleteObject(ctx, req, schema)
		if err == nil {
			return ParseObjectText(resp.Text())
		}
		if !IsRateLimit(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// withObjectContract returns a copy of req constrained to emit a single JSON
// object matching schema. The schema rides in the system prompt because not
// every provider honors a native response_format.
func withObjectContract(req Request, schema map[string]interface{}) Request {
	schemaJSON, _ := json.MarshalIndent(schema, "", "  ")
	instruction := fmt.Sprintf(
		"\nYou must respond with a single valid JSON object matching this schema:\n```json\n%s\n```\nRespond ONLY with the JSON object, no other text.",
		string(schemaJSON),
	)

	messages := make([]Message, len(req.Messages))
	copy(messages, req.Messages)
	appended := false
	for i := range messages {
		if messages[i].Role == RoleSystem {
			messages[i].Content += instruction
			appended = true
			break
		}
	}
	if !appended {
		messages = append([]Message{SystemMessage(instruction)}, messages...)
	}

	out := req
	out.Messages = messages
	out.ResponseFormat = &ResponseFormat{Type: "json_schema", JSONSchema: schema, Strict: true}
	return out
}

// ParseObjectText extracts the JSON object from a structured response,
// tolerating surrounding markdown code fences and stray prose.
func ParseObjectText(text string) (json.RawMessage, error) {
	candidate := strings.TrimSpace(text)
	if fenced := stripCodeFence(candidate); fenced != "" {
		candidate = fenced
	}
	if start := strings.Index(candidate, "{"); start > 0 {
		candidate = candidate[start:]
	}
	if end := strings.LastIndex(candidate, "}"); end >= 0 {
		candidate = candidate[:end+1]
	}

	if !json.Valid([]byte(candidate)) {
		return nil, &NoObjectGeneratedError{SDKError: SDKError{
			Message: fmt.Sprintf("structured response is not valid JSON: %.120s", text),
		}}
	}
	return json.RawMessage(candidate), nil
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return ""
	}
	body := strings.TrimPrefix(text, "```")
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:] // drop the language tag line
	}
	if i := strings.LastIndex(body, "```"); i >= 0 {
		body = body[:i]
	}
	return strings.TrimSpace(body)
}
