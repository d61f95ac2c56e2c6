package login

import (
	"context"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/userseed/internal/cache"
)

func TestTimestampIsStrictlyIncreasing(t *testing.T) {
	frozen := time.Unix(1700000000, 0)
	src := NewTimestamp(func() time.Time { return frozen })
	ctx := context.Background()

	seen := make(map[string]bool)
	var prev int64
	for range 1000 {
		l, err := src.Next(ctx)
		require.NoError(t, err)
		assert.False(t, seen[l], "duplicate login %s", l)
		seen[l] = true

		v, err := strconv.ParseInt(l, 10, 64)
		require.NoError(t, err)
		assert.Greater(t, v, prev)
		prev = v
	}

	first, _ := NewTimestamp(func() time.Time { return frozen }).Next(ctx)
	assert.Equal(t, strconv.FormatInt(frozen.UnixNano(), 10), first)
}

func TestTimestampRealClock(t *testing.T) {
	src := NewTimestamp(nil)
	l, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^\d{19}$`, l)
}

func TestSequence(t *testing.T) {
	src := NewSequence("user", 7)
	ctx := context.Background()
	a, _ := src.Next(ctx)
	b, _ := src.Next(ctx)
	assert.Equal(t, "user7", a)
	assert.Equal(t, "user8", b)
}

func TestUUID(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	a, err := UUID{}.Next(context.Background())
	require.NoError(t, err)
	b, err := UUID{}.Next(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, re, a)
	assert.NotEqual(t, a, b)
}

func TestNew(t *testing.T) {
	tests := []struct {
		strategy string
		wantErr  bool
	}{
		{"", false},
		{"timestamp", false},
		{"SEQUENCE", false},
		{"uuid", false},
		{"random", true},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			src, err := New(tt.strategy, "u", 1)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			l, err := src.Next(context.Background())
			require.NoError(t, err)
			assert.NotEmpty(t, l)
		})
	}
}

type stubSource struct {
	values []string
	i      int
}

func (s *stubSource) Next(context.Context) (string, error) {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v, nil
}

func TestReservedSkipsClaimedLogins(t *testing.T) {
	mr := miniredis.RunT(t)
	reg, err := cache.NewRedisLoginRegistry(mr.Addr(), "", 0, time.Hour, "t")
	require.NoError(t, err)
	defer reg.Close()
	ctx := context.Background()

	ok, err := reg.Claim(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)

	src := NewReserved(&stubSource{values: []string{"a", "b", "c"}}, reg, 3)
	l, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", l)
	l, err = src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", l)
}

func TestReservedExhausted(t *testing.T) {
	mr := miniredis.RunT(t)
	reg, err := cache.NewRedisLoginRegistry(mr.Addr(), "", 0, time.Hour, "t")
	require.NoError(t, err)
	defer reg.Close()
	ctx := context.Background()

	src := NewReserved(&stubSource{values: []string{"same"}}, reg, 2)
	_, err = src.Next(ctx)
	require.NoError(t, err)
	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestReservedWithoutRegistry(t *testing.T) {
	src := NewReserved(&stubSource{values: []string{"x"}}, nil, 0)
	l, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", l)
}

func TestReservedReleaseFreesLogin(t *testing.T) {
	mr := miniredis.RunT(t)
	reg, err := cache.NewRedisLoginRegistry(mr.Addr(), "", 0, time.Hour, "t")
	require.NoError(t, err)
	defer reg.Close()
	ctx := context.Background()

	src := NewReserved(&stubSource{values: []string{"same"}}, reg, 1)
	l, err := src.Next(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists("t:same"))

	var rel Releaser = src
	require.NoError(t, rel.Release(ctx, l))
	assert.False(t, mr.Exists("t:same"))

	l, err = src.Next(ctx)
	require.NoError(t, err, "released login can be claimed again")
	assert.Equal(t, "same", l)

	assert.NoError(t, NewReserved(&stubSource{values: []string{"x"}}, nil, 0).Release(ctx, "x"))
}
