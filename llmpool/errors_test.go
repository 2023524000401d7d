package llmpool

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRateLimitWrapped(t *testing.T) {
	base := NewRateLimitError("b1", "over budget")
	wrapped := fmt.Errorf("decide step: %w", base)
	if !IsRateLimit(wrapped) {
		t.Error("expected wrapped rate-limit error to be recognized")
	}
	if IsRateLimit(errors.New("plain")) {
		t.Error("plain error misclassified as rate limit")
	}
	if IsRateLimit(nil) {
		t.Error("nil misclassified as rate limit")
	}
}

func TestTranslateErrorClassification(t *testing.T) {
	b := &GollmBackend{provider: "gemini", model: "gemini-2.5-flash"}

	cases := []struct {
		in   string
		want interface{}
	}{
		{"API error 429: rate limit exceeded", &RateLimitError{}},
		{"quota exceeded for project", &RateLimitError{}},
		{"401 unauthorized", &AuthenticationError{}},
		{"500 internal server error", &ServerError{}},
		{"context deadline exceeded", &RequestTimeoutError{}},
		{"something else entirely", &ProviderError{}},
	}

	for _, tc := range cases {
		got := b.translateError(errors.New(tc.in))
		switch tc.want.(type) {
		case *RateLimitError:
			var e *RateLimitError
			if !errors.As(got, &e) {
				t.Errorf("%q: expected RateLimitError, got %T", tc.in, got)
			}
		case *AuthenticationError:
			var e *AuthenticationError
			if !errors.As(got, &e) {
				t.Errorf("%q: expected AuthenticationError, got %T", tc.in, got)
			}
		case *ServerError:
			var e *ServerError
			if !errors.As(got, &e) {
				t.Errorf("%q: expected ServerError, got %T", tc.in, got)
			}
		case *RequestTimeoutError:
			var e *RequestTimeoutError
			if !errors.As(got, &e) {
				t.Errorf("%q: expected RequestTimeoutError, got %T", tc.in, got)
			}
		case *ProviderError:
			var e *ProviderError
			if !errors.As(got, &e) {
				t.Errorf("%q: expected ProviderError, got %T", tc.in, got)
			}
		}
	}
}

func TestCatalogLookup(t *testing.T) {
	if info := GetModelInfo("gemini-2.5-flash"); info == nil || info.Provider != "gemini" {
		t.Errorf("catalog lookup by id failed: %+v", info)
	}
	if info := GetModelInfo("flash"); info == nil || info.ID != "gemini-2.5-flash" {
		t.Errorf("catalog lookup by alias failed: %+v", info)
	}
	if info := GetModelInfo("no-such-model"); info != nil {
		t.Errorf("expected nil for unknown model, got %+v", info)
	}
	if info := DefaultModel("gemini"); info == nil || info.ID != "gemini-2.5-flash" {
		t.Errorf("default model for gemini: %+v", info)
	}
}
