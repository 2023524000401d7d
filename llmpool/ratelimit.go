package llmpool

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// rateWindow is the sliding interval over which calls are counted.
const rateWindow = 60 * time.Second

// RateLimited wraps one Backend with a requests-per-minute ceiling over a
// sliding 60-second window. A call at the ceiling fails immediately with a
// *RateLimitError so the failover chain can try the next backend; the client
// never sleeps.
//
// Complete and CompleteObject share the same window: a structured call counts
// against the same budget as a plain one.
type RateLimited struct {
	backend Backend
	rpm     int

	mu     sync.Mutex
	window []time.Time
	now    func() time.Time
}

// NewRateLimited wraps backend with the given requests-per-minute ceiling.
// An rpm of zero or less disables limiting.
func NewRateLimited(backend Backend, rpm int) *RateLimited {
	return &RateLimited{
		backend: backend,
		rpm:     rpm,
		now:     time.Now,
	}
}

// Name returns the wrapped backend's identifier.
func (c *RateLimited) Name() string { return c.backend.Name() }

// SupportsStructuredOutput delegates to the wrapped backend.
func (c *RateLimited) SupportsStructuredOutput() bool {
	return c.backend.SupportsStructuredOutput()
}

// SetClock overrides the time source. Intended for tests.
func (c *RateLimited) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// reserve evicts stale timestamps and either records a new call or rejects.
func (c *RateLimited) reserve() error {
	if c.rpm <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	i := 0
	for i < len(c.window) && now.Sub(c.window[i]) > rateWindow {
		i++
	}
	c.window = c.window[i:]

	if len(c.window) >= c.rpm {
		return NewRateLimitError(c.backend.Name(),
			fmt.Sprintf("%s exceeded %d requests/minute", c.backend.Name(), c.rpm))
	}
	c.window = append(c.window, now)
	return nil
}

// Complete forwards the call when the window has room.
func (c *RateLimited) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := c.reserve(); err != nil {
		return nil, err
	}
	return c.backend.Complete(ctx, req)
}

// CompleteObject forwards a structured-output call when the window has room.
// See Failover.CompleteObject for the contract.
func (c *RateLimited) CompleteObject(ctx context.Context, req Request, schema map[string]interface{}) (*Response, error) {
	if err := c.reserve(); err != nil {
		return nil, err
	}
	return c.backend.Complete(ctx, withObjectContract(req, schema))
}
