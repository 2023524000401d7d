package llmpool

// ModelInfo describes a known model in the catalog. DefaultRPM is the
// requests-per-minute ceiling applied when a job config does not set one,
// sized for free-tier quotas.
type ModelInfo struct {
	ID         string   `json:"id"`
	Provider   string   `json:"provider"`
	DefaultRPM int      `json:"default_rpm"`
	Aliases    []string `json:"aliases,omitempty"`
}

// Models is the built-in model catalog.
var Models = []ModelInfo{
	// Gemini
	{ID: "gemini-2.5-flash", Provider: "gemini", DefaultRPM: 10, Aliases: []string{"flash"}},
	{ID: "gemini-2.5-pro", Provider: "gemini", DefaultRPM: 5, Aliases: []string{"pro"}},

	// Groq-hosted Llama (effectively unmetered for this workload)
	{ID: "llama-3.1-70b-versatile", Provider: "groq", DefaultRPM: 100, Aliases: []string{"llama"}},

	// OpenAI
	{ID: "gpt-4o-mini", Provider: "openai", DefaultRPM: 60},

	// Anthropic
	{ID: "claude-sonnet-4-5", Provider: "anthropic", DefaultRPM: 50, Aliases: []string{"sonnet"}},
}

// GetModelInfo returns the catalog entry for a model id or alias, or nil.
func GetModelInfo(modelID string) *ModelInfo {
	for i := range Models {
		if Models[i].ID == modelID {
			return &Models[i]
		}
		for _, alias := range Models[i].Aliases {
			if alias == modelID {
				return &Models[i]
			}
		}
	}
	return nil
}

// DefaultModel returns the first catalog model for a provider, or nil.
func DefaultModel(provider string) *ModelInfo {
	for i := range Models {
		if Models[i].Provider == provider {
			return &Models[i]
		}
	}
	return nil
}
