// Package llmpool provides the model-access layer for the agent engine:
// provider backends built on gollm, per-backend sliding-window rate limiting,
// and an ordered failover chain.
//
// # Architecture
//
// The package is organized in three layers:
//
//   - Backend: the provider contract. GollmBackend wraps a gollm.LLM and
//     translates between jobsmith types and gollm's API, classifying provider
//     failures into the typed error hierarchy.
//   - RateLimited: wraps one Backend with a requests-per-minute ceiling over a
//     60-second sliding window. At the ceiling it fails immediately with a
//     *RateLimitError; it never sleeps, so callers can fail over.
//   - Failover: an ordered list of RateLimited clients. A rate-limited backend
//     advances the chain; any other failure propagates unchanged.
//
// # Structured decisions
//
// CompleteObject constrains the model to emit a single JSON object matching a
// schema. The schema is appended to the system prompt and the response text is
// parsed (tolerating markdown code fences); a response that does not parse is
// reported as *NoObjectGeneratedError.
//
// # Quick Start
//
//	flash, _ := llmpool.NewGollmBackend("gemini", "", llmpool.WithModel("gemini-2.5-flash"))
//	pro, _ := llmpool.NewGollmBackend("gemini", "", llmpool.WithModel("gemini-2.5-pro"))
//
//	chain := llmpool.NewFailover(
//	    llmpool.NewRateLimited(flash, 10),
//	    llmpool.NewRateLimited(pro, 5),
//	)
//	resp, err := chain.Complete(ctx, llmpool.Request{
//	    Messages: []llmpool.Message{llmpool.UserMessage("Hello")},
//	})
package llmpool
