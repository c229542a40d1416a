package calc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-gateway/internal/kv"
)

// Sessions keeps one calculator per modal session in the kv store. State is
// transient; an expired session simply starts over at "0".
type Sessions struct {
	store kv.Store
	ttl   time.Duration
}

// NewSessions creates a calculator session manager.
func NewSessions(store kv.Store, ttl time.Duration) *Sessions {
	return &Sessions{store: store, ttl: ttl}
}

func calcKey(id string) string {
	return "calculator:" + id
}

// Press applies keys in order to the session's calculator and returns the
// resulting state. A missing session starts from a cleared calculator.
func (s *Sessions) Press(ctx context.Context, id string, keys []string) (*Calculator, error) {
	c := New()
	err := s.store.Get(ctx, calcKey(id), c)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("failed to load calculator state: %w", err)
	}
	if c.Display == "" {
		c.Display = "0"
	}

	for _, key := range keys {
		if err := c.Press(key); err != nil {
			return nil, err
		}
	}

	if err := s.store.Set(ctx, calcKey(id), c, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store calculator state: %w", err)
	}
	return c, nil
}

// Reset discards the session's calculator state.
func (s *Sessions) Reset(ctx context.Context, id string) error {
	return s.store.Delete(ctx, calcKey(id))
}
