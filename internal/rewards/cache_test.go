package rewards

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeCache struct {
	data map[string]string
	sets int
}

func (f *fakeCache) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.sets++
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func TestCachedSourceServesSecondFetchFromCache(t *testing.T) {
	calls := 0
	next := SourceFunc(func(_ context.Context, code, key string) Result {
		calls++
		return OK(Snapshot{Name: "학생A", Cookie: 3})
	})
	fc := &fakeCache{data: map[string]string{}}
	src := NewCachedSource(next, fc, time.Minute, nil)

	for i := 0; i < 2; i++ {
		res := src.Fetch(context.Background(), "ABCD1", "key-1")
		if res.Snapshot == nil || res.Snapshot.Name != "학생A" || res.Snapshot.Cookie != 3 {
			t.Fatalf("fetch %d: %+v", i, res)
		}
	}
	if calls != 1 {
		t.Fatalf("upstream calls = %d, want 1", calls)
	}
	if fc.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", fc.sets)
	}
}

func TestCachedSourceDoesNotCacheFailures(t *testing.T) {
	calls := 0
	next := SourceFunc(func(_ context.Context, code, key string) Result {
		calls++
		return Failed("boom")
	})
	fc := &fakeCache{data: map[string]string{}}
	src := NewCachedSource(next, fc, time.Minute, nil)

	_ = src.Fetch(context.Background(), "ABCD1", "key-1")
	res := src.Fetch(context.Background(), "ABCD1", "key-1")
	if res.Error != "boom" || calls != 2 || fc.sets != 0 {
		t.Fatalf("res=%+v calls=%d sets=%d", res, calls, fc.sets)
	}
}

func TestFingerprintIsStableAndOpaque(t *testing.T) {
	a := Fingerprint("secret-key")
	if a != Fingerprint("secret-key") {
		t.Fatalf("fingerprint not stable")
	}
	if len(a) != 16 || a == Fingerprint("other-key") {
		t.Fatalf("unexpected fingerprint %q", a)
	}
}
