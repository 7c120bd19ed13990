package api

import "sync"

// RunContext is the shared, per-run object injected into steps registered
// with PassContext(true). The dispatcher creates one per workflow run.
//
// It is safe for concurrent use by steps running with NumWorkers > 1.
type RunContext struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewRunContext returns an empty RunContext.
func NewRunContext() *RunContext {
	return &RunContext{data: make(map[string]any)}
}

// Get returns the value stored under key.
func (c *RunContext) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.data[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (c *RunContext) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data == nil {
		c.data = make(map[string]any)
	}
	c.data[key] = value
}
