package kvstore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazaar/internal/kvstore"
)

func newStore(t *testing.T) *kvstore.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	return kvstore.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestScalarRoundTrips(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SetString(ctx, "ns", "k", "hello"))
	v, err := s.GetString(ctx, "ns", "k")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	require.NoError(t, s.SetInt(ctx, "ns", "n", 42))
	n, err := s.GetInt(ctx, "ns", "n")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	require.NoError(t, s.SetFloat(ctx, "ns", "f", 12.5))
	f, err := s.GetFloat(ctx, "ns", "f")
	require.NoError(t, err)
	assert.Equal(t, 12.5, f)

	require.NoError(t, s.SetBool(ctx, "ns", "b", true))
	b, err := s.GetBool(ctx, "ns", "b")
	require.NoError(t, err)
	assert.True(t, b)
}

func TestMissingKeysReadAsZero(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	v, err := s.GetString(ctx, "ns", "nope")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	n, err := s.GetInt(ctx, "ns", "nope")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	b, err := s.GetBool(ctx, "ns", "nope")
	require.NoError(t, err)
	assert.False(t, b)
}

func TestCorruptedValueReadsAsZero(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SetString(ctx, "ns", "n", "not-a-number"))
	n, err := s.GetInt(ctx, "ns", "n")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSetMembership(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.AddToSet(ctx, "ns", "ids", "a"))
	require.NoError(t, s.AddToSet(ctx, "ns", "ids", "b"))
	require.NoError(t, s.AddToSet(ctx, "ns", "ids", "a"))

	members, err := s.Members(ctx, "ns", "ids")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, members)

	require.NoError(t, s.RemoveFromSet(ctx, "ns", "ids", "a"))
	members, err = s.Members(ctx, "ns", "ids")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, members)
}

func TestClearNamespaceLeavesOthersAlone(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SetString(ctx, "cart_data:u1", "k", "v"))
	require.NoError(t, s.SetString(ctx, "cart_data:u2", "k", "v"))

	require.NoError(t, s.ClearNamespace(ctx, "cart_data:u1"))

	v, err := s.GetString(ctx, "cart_data:u1", "k")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	v, err = s.GetString(ctx, "cart_data:u2", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}
