package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-gateway/internal/kv"
)

func TestHistory_RoundTrip(t *testing.T) {
	h := NewHistory(kv.NewMemoryStore())
	ctx := context.Background()

	recent, err := h.Recent(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, recent, "missing history is empty, not an error")

	_, err = h.Record(ctx, "sess-1", "pipe")
	require.NoError(t, err)
	recent, err = h.Record(ctx, "sess-1", "wire")
	require.NoError(t, err)
	assert.Equal(t, []string{"wire", "pipe"}, recent)

	// Histories are per session.
	other, err := h.Recent(ctx, "sess-2")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, h.Clear(ctx, "sess-1"))
	recent, err = h.Recent(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, recent)
}
