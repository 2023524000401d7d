package llmpool

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/teilomillet/gollm"
)

// GollmBackend wraps a gollm.LLM instance and implements Backend.
// It translates between jobsmith types and gollm's API.
type GollmBackend struct {
	provider string
	model    string
	llm      gollm.LLM
}

// GollmOption configures a GollmBackend.
type GollmOption func(*gollmConfig)

type gollmConfig struct {
	model       string
	maxTokens   int
	temperature float64
	extraOpts   []gollm.ConfigOption
}

// WithModel sets the model identifier for the backend.
func WithModel(model string) GollmOption {
	return func(c *gollmConfig) { c.model = model }
}

// WithMaxTokens sets the default max tokens.
func WithMaxTokens(n int) GollmOption {
	return func(c *gollmConfig) { c.maxTokens = n }
}

// WithTemperature sets the default temperature.
func WithTemperature(t float64) GollmOption {
	return func(c *gollmConfig) { c.temperature = t }
}

// WithGollmOptions adds extra gollm configuration options.
func WithGollmOptions(opts ...gollm.ConfigOption) GollmOption {
	return func(c *gollmConfig) { c.extraOpts = append(c.extraOpts, opts...) }
}

// NewGollmBackend creates a backend for the given provider. If apiKey is
// empty, gollm reads it from the provider's environment variable.
func NewGollmBackend(provider, apiKey string, opts ...GollmOption) (*GollmBackend, error) {
	cfg := &gollmConfig{
		maxTokens:   4096,
		temperature: 0.1,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	model := cfg.model
	if model == "" {
		if info := DefaultModel(provider); info != nil {
			model = info.ID
		} else {
			return nil, &ConfigurationError{SDKError: SDKError{
				Message: fmt.Sprintf("no model configured for provider %q", provider),
			}}
		}
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetModel(model),
		gollm.SetMaxTokens(cfg.maxTokens),
		gollm.SetTemperature(cfg.temperature),
		gollm.SetMaxRetries(0), // failover handles failures, never the provider SDK
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(apiKey))
	}
	gollmOpts = append(gollmOpts, cfg.extraOpts...)

	llm, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("create gollm LLM for provider %s: %w", provider, err)
	}

	return &GollmBackend{provider: provider, model: model, llm: llm}, nil
}

// NewGollmBackendFromLLM wraps an existing gollm.LLM instance.
func NewGollmBackendFromLLM(provider, model string, llm gollm.LLM) *GollmBackend {
	return &GollmBackend{provider: provider, model: model, llm: llm}
}

// Name returns "provider/model".
func (b *GollmBackend) Name() string {
	return b.provider + "/" + b.model
}

// SupportsStructuredOutput is true for all gollm-backed providers: the schema
// contract is enforced through the system prompt and response parsing.
func (b *GollmBackend) SupportsStructuredOutput() bool { return true }

// Complete sends a blocking request and returns the full response.
func (b *GollmBackend) Complete(ctx context.Context, req Request) (*Response, error) {
	prompt := b.translateRequest(req)
	b.applyRequestOptions(req)

	text, err := b.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, b.translateError(err)
	}

	model := req.Model
	if model == "" {
		model = b.model
	}
	return &Response{
		ID:       "resp_" + uuid.New().String()[:8],
		Model:    model,
		Provider: b.provider,
		Message:  AssistantMessage(text),
		Usage: Usage{
			// gollm does not expose usage; estimate from text length.
			InputTokens:  estimateTokens(req),
			OutputTokens: len(text) / 4,
			TotalTokens:  estimateTokens(req) + len(text)/4,
		},
	}, nil
}

// translateRequest converts a Request into a gollm Prompt.
func (b *GollmBackend) translateRequest(req Request) *gollm.Prompt {
	systemText, promptText := flattenMessages(req)

	promptOpts := []gollm.PromptOption{}
	if systemText != "" {
		promptOpts = append(promptOpts,
			gollm.WithSystemPrompt(systemText, gollm.CacheTypeEphemeral))
	}
	if req.MaxTokens != nil {
		promptOpts = append(promptOpts, gollm.WithMaxLength(*req.MaxTokens))
	}

	return gollm.NewPrompt(promptText, promptOpts...)
}

// flattenMessages folds a message history into gollm's single system prompt
// plus user prompt shape: assistant and tool messages become labelled context
// lines. gollm exposes no native response_format, so a json_schema contract
// is enforced with a closing JSON-only directive on the prompt.
func flattenMessages(req Request) (system, prompt string) {
	var systemPrompt strings.Builder
	var parts []string

	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			systemPrompt.WriteString(msg.Content)
			systemPrompt.WriteString("\n")
		case RoleUser:
			parts = append(parts, msg.Content)
		case RoleAssistant:
			if msg.Content != "" {
				parts = append(parts, "[Assistant]: "+msg.Content)
			}
		case RoleTool:
			parts = append(parts, "[Tool Result]: "+msg.Content)
		}
	}

	promptText := strings.Join(parts, "\n")
	if promptText == "" {
		promptText = "Hello"
	}
	if req.ResponseFormat != nil && req.ResponseFormat.Type == "json_schema" {
		promptText += "\nRespond with a single JSON object and nothing else."
	}

	return strings.TrimSpace(systemPrompt.String()), promptText
}

// applyRequestOptions applies request-level parameters to the gollm LLM.
func (b *GollmBackend) applyRequestOptions(req Request) {
	if req.Model != "" {
		b.llm.SetOption("model", req.Model)
	}
	if req.Temperature != nil {
		b.llm.SetOption("temperature", *req.Temperature)
	}
	if req.MaxTokens != nil {
		b.llm.SetOption("max_tokens", *req.MaxTokens)
	}
}

// translateError converts a gollm error into the typed error hierarchy.
// gollm surfaces provider failures as opaque errors, so classification is by
// message content.
func (b *GollmBackend) translateError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit") || strings.Contains(lower, "quota"):
		return &RateLimitError{ProviderError: ProviderError{
			SDKError: SDKError{Message: msg, Cause: err}, Provider: b.provider, StatusCode: 429,
		}}
	case strings.Contains(lower, "401") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key"):
		return &AuthenticationError{ProviderError: ProviderError{
			SDKError: SDKError{Message: msg, Cause: err}, Provider: b.provider, StatusCode: 401,
		}}
	case strings.Contains(lower, "500") || strings.Contains(lower, "502") || strings.Contains(lower, "503") || strings.Contains(lower, "internal server"):
		return &ServerError{ProviderError: ProviderError{
			SDKError: SDKError{Message: msg, Cause: err}, Provider: b.provider, StatusCode: 500,
		}}
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded"):
		return &RequestTimeoutError{SDKError: SDKError{Message: msg, Cause: err}}
	default:
		return &ProviderError{
			SDKError: SDKError{Message: msg, Cause: err},
			Provider: b.provider,
		}
	}
}

// estimateTokens provides a rough token count estimate from request messages.
func estimateTokens(req Request) int {
	total := 0
	for _, msg := range req.Messages {
		total += len(msg.Content) / 4
	}
	if total == 0 {
		total = 10
	}
	return total
}
