package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardKey(t *testing.T) {
	assert.Equal(t, "presale:forward:lead:abc:lead.paid", forwardKey("lead:abc:lead.paid"))
}

func TestNewForwardDedupDefaultsTTL(t *testing.T) {
	assert.Equal(t, DefaultDedupTTL, NewForwardDedup(nil, 0).TTL)
}

// Runs against a live Redis when REDIS_TEST_ADDR is set.
func TestForwardDedupAcquireRelease(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, addr, "")
	require.NoError(t, err)
	defer client.Close()

	d := NewForwardDedup(client, time.Minute)
	key := "lead:" + uuid.NewString()
	defer d.Release(ctx, key)

	first, err := d.Acquire(ctx, key)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := d.Acquire(ctx, key)
	require.NoError(t, err)
	assert.False(t, second)

	require.NoError(t, d.Release(ctx, key))
	again, err := d.Acquire(ctx, key)
	require.NoError(t, err)
	assert.True(t, again)
}
