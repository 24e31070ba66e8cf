package page

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// CallbackResult is what the injected script posts back for one request.
type CallbackResult struct {
	RequestID string          `json:"requestId"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// CallbackCollector routes JS→Go callback results to the goroutine waiting
// on the matching request ID. Results for unknown IDs (stale scripts firing
// after a timeout) are dropped.
type CallbackCollector struct {
	mu      sync.Mutex
	pending map[string]chan CallbackResult
}

// NewCallbackCollector returns an empty collector.
func NewCallbackCollector() *CallbackCollector {
	return &CallbackCollector{pending: make(map[string]chan CallbackResult)}
}

// Register creates a buffered channel for a request ID and returns it.
func (c *CallbackCollector) Register(requestID string) chan CallbackResult {
	ch := make(chan CallbackResult, 1)
	c.mu.Lock()
	c.pending[requestID] = ch
	c.mu.Unlock()
	return ch
}

// Deliver routes a result to its waiter. Unknown request IDs are ignored.
func (c *CallbackCollector) Deliver(result CallbackResult) {
	c.mu.Lock()
	ch, ok := c.pending[result.RequestID]
	c.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- result:
	default:
	}
}

// Cleanup removes a pending request.
func (c *CallbackCollector) Cleanup(requestID string) {
	c.mu.Lock()
	delete(c.pending, requestID)
	c.mu.Unlock()
}

// Wait blocks until the result for requestID arrives, the timeout elapses,
// or ctx is cancelled. The pending entry is always cleaned up.
func (c *CallbackCollector) Wait(ctx context.Context, requestID string, timeout time.Duration) (json.RawMessage, error) {
	c.mu.Lock()
	ch, ok := c.pending[requestID]
	c.mu.Unlock()
	if !ok {
		ch = c.Register(requestID)
	}
	defer c.Cleanup(requestID)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-ch:
		if result.Error != "" {
			return nil, fmt.Errorf("js error: %s", result.Error)
		}
		return result.Data, nil
	case <-timer.C:
		return nil, fmt.Errorf("timeout waiting for page response")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Handler returns the HTTP endpoint the injected script posts results to.
// CORS headers echo the page origin: the telephony page is HTTPS and the
// callback target is loopback HTTP, so the preflight must succeed.
func (c *CallbackCollector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusNoContent)
			return
		case http.MethodPost:
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var result CallbackResult
		if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if result.RequestID == "" {
			http.Error(w, "missing requestId", http.StatusBadRequest)
			return
		}
		c.Deliver(result)
		w.WriteHeader(http.StatusOK)
	}
}
