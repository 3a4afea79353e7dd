package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4birli/MindVault/internal/vault/chunk"
)

func TestIngest_EmptyBodyShortCircuitsBeforeTouchingDependencies(t *testing.T) {
	t.Parallel()
	// store/embed/tags are left nil: the empty-body check must return before
	// any of them are dereferenced.
	ing := New(nil, nil, nil, chunk.DefaultOptions(), nil)
	resp, err := ing.Ingest(context.Background(), Request{PlainText: "   "})
	require.ErrorIs(t, err, ErrEmptyBody)
	assert.False(t, resp.OK)
}
