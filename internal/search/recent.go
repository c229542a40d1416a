package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront-gateway/internal/kv"
)

// RecentSearchLimit caps the stored search history.
const RecentSearchLimit = 5

// Remember prepends a query to a recent-search list, deduplicating and
// keeping at most RecentSearchLimit entries, most recent first. Blank
// queries leave the list unchanged.
func Remember(recent []string, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return recent
	}

	updated := make([]string, 0, RecentSearchLimit)
	updated = append(updated, query)
	for _, q := range recent {
		if q != query {
			updated = append(updated, q)
		}
		if len(updated) == RecentSearchLimit {
			break
		}
	}
	return updated
}

// History persists a user's recent searches in the kv store.
type History struct {
	store kv.Store
}

// NewHistory creates a recent-search history backed by store.
func NewHistory(store kv.Store) *History {
	return &History{store: store}
}

func historyKey(sessionID string) string {
	return "recent-searches:" + sessionID
}

// Recent returns the stored history, most recent first. A missing key is an
// empty history, not an error.
func (h *History) Recent(ctx context.Context, sessionID string) ([]string, error) {
	var recent []string
	err := h.store.Get(ctx, historyKey(sessionID), &recent)
	if errors.Is(err, kv.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recent searches: %w", err)
	}
	return recent, nil
}

// Record adds a query to the history and returns the updated list.
func (h *History) Record(ctx context.Context, sessionID, query string) ([]string, error) {
	recent, err := h.Recent(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	updated := Remember(recent, query)
	if err := h.store.Set(ctx, historyKey(sessionID), updated, 0); err != nil {
		return nil, fmt.Errorf("failed to store recent searches: %w", err)
	}
	return updated, nil
}

// Clear removes the stored history.
func (h *History) Clear(ctx context.Context, sessionID string) error {
	return h.store.Delete(ctx, historyKey(sessionID))
}
