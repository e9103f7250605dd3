package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mind-engage/growthreport/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tick struct{ t time.Time }

func (c *tick) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newSQL(t *testing.T) *SQLStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "store.db") + "?_pragma=busy_timeout(5000)"
	h, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	s := NewSQLStore(h, NSCounsels)
	c := &tick{t: time.Unix(1700000000, 0)}
	s.now = c.now
	return s
}

func newMemory() *MemoryStore {
	m := NewMemoryStore()
	c := &tick{t: time.Unix(1700000000, 0)}
	m.now = c.now
	return m
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{"sql": newSQL(t), "memory": newMemory()}
}

func TestStoreParity(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Load(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.True(t, s.Save(ctx, "a", "key1", []byte(`{"n":1}`)).Success)
			require.True(t, s.Save(ctx, "b", "key2", []byte(`{"n":2}`)).Success)
			require.True(t, s.Save(ctx, "c", "key1", []byte(`{"n":3}`)).Success)

			v, ok, err := s.Load(ctx, "a")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `{"n":1}`, string(v))

			first, _, _ := s.Get(ctx, "a")
			require.True(t, s.Save(ctx, "a", "key1", []byte(`{"n":4}`)).Success)
			again, _, _ := s.Get(ctx, "a")
			assert.Equal(t, first.CreatedAt, again.CreatedAt)
			assert.Greater(t, again.UpdatedAt, first.UpdatedAt)

			own, err := s.List(ctx, "key1")
			require.NoError(t, err)
			require.Len(t, own, 2)
			assert.Equal(t, "a", own[0].Key, "newest first")
			assert.Equal(t, "c", own[1].Key)

			all, err := s.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 3)

			assert.True(t, s.Delete(ctx, "b").Success)
			out := s.Delete(ctx, "b")
			assert.False(t, out.Success)
			assert.Error(t, out.Err())

			assert.False(t, s.Save(ctx, "", "", nil).Success)
		})
	}
}

func TestSQLStoreNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	counsels := newSQL(t)
	subs := NewSQLStore(counsels.db, NSSubmissions)

	require.True(t, counsels.Save(ctx, "x", "", []byte("1")).Success)
	_, ok, err := subs.Load(ctx, "x")
	require.NoError(t, err)
	assert.False(t, ok)
}
