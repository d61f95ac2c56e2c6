package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLoginRegistry(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	reg, err := NewRedisLoginRegistry(mr.Addr(), "", 0, time.Hour, "test")
	require.NoError(t, err)
	defer reg.Close()
	require.NoError(t, reg.Ping(ctx))

	ok, err := reg.Claim(ctx, "1700000000000000001")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("test:1700000000000000001"))
	assert.Equal(t, time.Hour, mr.TTL("test:1700000000000000001"))

	ok, err = reg.Claim(ctx, "1700000000000000001")
	require.NoError(t, err)
	assert.False(t, ok, "second claim of the same login must fail")

	require.NoError(t, reg.Release(ctx, "1700000000000000001"))
	ok, err = reg.Claim(ctx, "1700000000000000001")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLoginRegistryExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	reg, err := NewRedisLoginRegistry(mr.Addr(), "", 0, time.Minute, "")
	require.NoError(t, err)
	defer reg.Close()

	ok, err := reg.Claim(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("seed_login:a"))

	mr.FastForward(2 * time.Minute)
	ok, err = reg.Claim(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewRedisLoginRegistryRequiresAddr(t *testing.T) {
	_, err := NewRedisLoginRegistry("", "", 0, 0, "")
	assert.Error(t, err)
}

func TestRedisLoginRegistryUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	reg, err := NewRedisLoginRegistry(mr.Addr(), "", 0, 0, "")
	require.NoError(t, err)
	defer reg.Close()
	mr.Close()

	_, err = reg.Claim(context.Background(), "a")
	assert.Error(t, err)
}
