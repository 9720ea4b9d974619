package inference

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"invosplit/internal/domain"
	"invosplit/internal/port"
)

// circuitState tracks rate-limit backoff for a single inference client.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackClient tries inference clients in order, skipping those with open
// circuits. It implements port.InferenceClient.
type FallbackClient struct {
	clients  []port.InferenceClient
	circuits []*circuitState
	names    []string
}

// NewFallbackClient creates a FallbackClient from an ordered list of clients
// and their names.
func NewFallbackClient(clients []port.InferenceClient, names []string) *FallbackClient {
	circuits := make([]*circuitState, len(clients))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackClient{
		clients:  clients,
		circuits: circuits,
		names:    names,
	}
}

func (f *FallbackClient) ProposeBoundaries(ctx context.Context, pages []domain.PageRecord) (string, error) {
	var reply string
	err := f.attempt(ctx, func(ctx context.Context, c port.InferenceClient) error {
		var err error
		reply, err = c.ProposeBoundaries(ctx, pages)
		return err
	})
	return reply, err
}

func (f *FallbackClient) ExtractFields(ctx context.Context, req port.FieldRequest) (*port.FieldResponse, error) {
	var resp *port.FieldResponse
	err := f.attempt(ctx, func(ctx context.Context, c port.InferenceClient) error {
		var err error
		resp, err = c.ExtractFields(ctx, req)
		return err
	})
	return resp, err
}

func (f *FallbackClient) attempt(ctx context.Context, call func(context.Context, port.InferenceClient) error) error {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, c := range f.clients {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("inference.FallbackClient: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		err := call(ctx, c)
		if err == nil {
			return nil
		}

		log.Printf("inference.FallbackClient: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		// Every client was skipped or rate limited in this pass.
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return NewRateLimitError("all", fmt.Errorf("all inference clients rate limited"), int(retryAfter.Seconds()))
	}

	return fmt.Errorf("all inference clients failed: %w", lastErr)
}
