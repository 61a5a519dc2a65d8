package kv_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/alexanderramin/elicit/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behavior every Store backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) kv.Store) {
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("set then get overwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "study:a", []byte(`{"v":1}`)))
		require.NoError(t, s.Set(ctx, "study:a", []byte(`{"v":2}`)))

		got, err := s.Get(ctx, "study:a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(got))
	})

	t.Run("set if absent writes once", func(t *testing.T) {
		s := newStore(t)
		wrote, err := s.SetIfAbsent(ctx, "interview:a:1", []byte("first"))
		require.NoError(t, err)
		assert.True(t, wrote)

		wrote, err = s.SetIfAbsent(ctx, "interview:a:1", []byte("second"))
		require.NoError(t, err)
		assert.False(t, wrote)

		got, err := s.Get(ctx, "interview:a:1")
		require.NoError(t, err)
		assert.Equal(t, "first", string(got))
	})

	t.Run("set membership", func(t *testing.T) {
		s := newStore(t)
		members, err := s.SMembers(ctx, "study:a:interviews")
		require.NoError(t, err)
		assert.Empty(t, members)

		require.NoError(t, s.SAdd(ctx, "study:a:interviews", "s2", "s1"))
		require.NoError(t, s.SAdd(ctx, "study:a:interviews", "s1"))
		require.NoError(t, s.SAdd(ctx, "study:b:interviews", "s3"))
		require.NoError(t, s.SAdd(ctx, "study:a:interviews"))

		members, err = s.SMembers(ctx, "study:a:interviews")
		require.NoError(t, err)
		assert.Equal(t, []string{"s1", "s2"}, members)
	})

	t.Run("concurrent write-once race has one winner", func(t *testing.T) {
		s := newStore(t)
		var wg sync.WaitGroup
		wins := make([]bool, 8)
		for i := range wins {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ok, err := s.SetIfAbsent(ctx, "race", []byte(fmt.Sprint(i)))
				assert.NoError(t, err)
				wins[i] = ok
			}(i)
		}
		wg.Wait()

		n := 0
		for _, w := range wins {
			if w {
				n++
			}
		}
		assert.Equal(t, 1, n)
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(ctx))
	})
}

func TestSQLiteStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) kv.Store {
		s, err := kv.OpenSQLite(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestSQLiteStore_PingAfterClose(t *testing.T) {
	s, err := kv.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Ping(context.Background()), kv.ErrUnavailable)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := t.TempDir() + "/nested/elicit.db"

	s, err := kv.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "k", []byte("v")))
	require.NoError(t, s.SAdd(context.Background(), "set", "m"))
	require.NoError(t, s.Close())

	s, err = kv.OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	members, err := s.SMembers(context.Background(), "set")
	require.NoError(t, err)
	assert.Equal(t, []string{"m"}, members)
}

// Requires a Redis server; set ELICIT_TEST_REDIS_ADDR to run.
func TestRedisStore_Contract(t *testing.T) {
	addr := os.Getenv("ELICIT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ELICIT_TEST_REDIS_ADDR not set")
	}

	n := 0
	runStoreContract(t, func(t *testing.T) kv.Store {
		n++
		s, err := kv.OpenRedis(context.Background(), kv.RedisConfig{
			Addr:   addr,
			Prefix: fmt.Sprintf("elicit-test:%d:%d:", os.Getpid(), n),
		})
		if err != nil {
			t.Skipf("Redis not available: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestOpenRedis_Unreachable(t *testing.T) {
	_, err := kv.OpenRedis(context.Background(), kv.RedisConfig{Addr: "127.0.0.1:1"})
	assert.ErrorIs(t, err, kv.ErrUnavailable)
}
