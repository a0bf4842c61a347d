package store

import (
	"context"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/config"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb)
}

// backends runs fn against every backend that needs no external server.
func backends(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("redis", func(t *testing.T) { fn(t, newRedisStore(t)) })
}

func sorted(keys []string) []string {
	out := append([]string(nil), keys...)
	sort.Strings(out)
	return out
}

func TestStore_GetSet(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.Get(ctx, "registration:id:1")
		require.ErrorIs(t, err, ErrNil)

		require.NoError(t, s.Set(ctx, "registration:id:1", []byte(`{"id":"1"}`)))
		got, err := s.Get(ctx, "registration:id:1")
		require.NoError(t, err)
		require.Equal(t, `{"id":"1"}`, string(got))

		require.NoError(t, s.Set(ctx, "registration:id:1", []byte(`{"id":"1","mesa":"Mesa 2"}`)))
		got, err = s.Get(ctx, "registration:id:1")
		require.NoError(t, err)
		require.Equal(t, `{"id":"1","mesa":"Mesa 2"}`, string(got))
	})
}

func TestStore_SetNX(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		ok, err := s.SetNX(ctx, "registration:dni:123", []byte("first"))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = s.SetNX(ctx, "registration:dni:123", []byte("second"))
		require.NoError(t, err)
		require.False(t, ok)

		got, err := s.Get(ctx, "registration:dni:123")
		require.NoError(t, err)
		require.Equal(t, "first", string(got))
	})
}

func TestStore_KeysDelFlush(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, k := range []string{"registration:id:a", "registration:dni:1", "purchase:p", "session:x"} {
			require.NoError(t, s.Set(ctx, k, []byte("v")))
		}

		keys, err := s.Keys(ctx, "registration:*")
		require.NoError(t, err)
		require.Equal(t, []string{"registration:dni:1", "registration:id:a"}, sorted(keys))

		keys, err = s.Keys(ctx, "purchase:*")
		require.NoError(t, err)
		require.Equal(t, []string{"purchase:p"}, keys)

		n, err := s.Del(ctx, "registration:id:a", "purchase:p", "missing")
		require.NoError(t, err)
		require.EqualValues(t, 2, n)

		n, err = s.Del(ctx)
		require.NoError(t, err)
		require.Zero(t, n)

		keys, err = s.Keys(ctx, "*")
		require.NoError(t, err)
		require.Equal(t, []string{"registration:dni:1", "session:x"}, sorted(keys))

		require.NoError(t, s.FlushAll(ctx))
		keys, err = s.Keys(ctx, "*")
		require.NoError(t, err)
		require.Empty(t, keys)
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	val := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", val))
	val[0] = 'z'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(again))
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern, key string
		want         bool
	}{
		{"registration:*", "registration:id:1", true},
		{"registration:*", "purchase:1", false},
		{"registration:id:*", "registration:dni:1", false},
		{"*", "", true},
		{"*", "anything/with/slashes", true},
		{"purchase:?", "purchase:1", true},
		{"purchase:?", "purchase:12", false},
		{"a*b*c", "axxbyyc", true},
		{"a*b*c", "axxbyy", false},
		{`lit\*`, "lit*", true},
		{`lit\*`, "litx", false},
		{"exact", "exact", true},
		{"exact", "exactly", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Match(tt.pattern, tt.key), "%q ~ %q", tt.pattern, tt.key)
	}
}

func TestUnique(t *testing.T) {
	require.Equal(t, []string{"b", "a", "c"}, unique([]string{"b", "a", "b", "c", "a"}))
	require.Equal(t, []string{"x"}, unique([]string{"x"}))
	require.Empty(t, unique(nil))
}

func TestGlobToLike(t *testing.T) {
	require.Equal(t, "registration:%", GlobToLike("registration:*"))
	require.Equal(t, "purchase:_", GlobToLike("purchase:?"))
	require.Equal(t, `a\_b\%%`, GlobToLike("a_b%*"))
	require.Equal(t, "lit*", GlobToLike(`lit\*`))
	require.Equal(t, `x\\`, GlobToLike(`x\`))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := Open(ctx, config.StoreConfig{Backend: config.BackendMemory}, nil)
	require.NoError(t, err)
	require.Equal(t, "memory", s.Name())
	require.NoError(t, closeFn())

	s, _, err = Open(ctx, config.StoreConfig{Backend: config.BackendAuto}, nil)
	require.NoError(t, err)
	require.Equal(t, "memory", s.Name(), "auto falls back to memory without redis")

	_, _, err = Open(ctx, config.StoreConfig{Backend: config.BackendRedis}, nil)
	require.ErrorIs(t, err, ErrRedisUnavailable)

	rs := newRedisStore(t)
	s, _, err = Open(ctx, config.StoreConfig{Backend: config.BackendAuto}, rs.rdb)
	require.NoError(t, err)
	require.Equal(t, "redis", s.Name())

	_, _, err = Open(ctx, config.StoreConfig{Backend: "etcd"}, nil)
	require.Error(t, err)
}
