package rng

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draw(t *testing.T, stage, key string, seed int64) []int {
	t.Helper()
	r, err := NewAdapter().Stream(context.Background(), stage, key, seed)
	require.NoError(t, err)
	out := make([]int, 8)
	for i := range out {
		out[i] = r.Intn(1000)
	}
	return out
}

func TestStream_Deterministic(t *testing.T) {
	assert.Equal(t, draw(t, "delta_r2", "model2", 42), draw(t, "delta_r2", "model2", 42))
	assert.NotEqual(t, draw(t, "delta_r2", "model2", 42), draw(t, "delta_r2", "model3", 42))
	assert.NotEqual(t, draw(t, "delta_r2", "model2", 42), draw(t, "delta_r2", "model2", 43))
}

func TestStream_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAdapter().Stream(ctx, "s", "k", 1)
	assert.ErrorIs(t, err, context.Canceled)
}
