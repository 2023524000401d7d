package llmpool

import "context"

// Backend is the interface every model provider must implement.
type Backend interface {
	// Name returns a human-readable backend identifier, usually
	// "provider/model" (e.g. "gemini/gemini-2.5-flash").
	Name() string

	// Complete sends a blocking request and returns the full response.
	Complete(ctx context.Context, req Request) (*Response, error)

	// SupportsStructuredOutput reports whether the backend can be held to a
	// JSON-schema response contract. Backends that cannot are skipped by the
	// failover chain's structured variant.
	SupportsStructuredOutput() bool
}
