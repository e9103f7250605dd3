package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// MemoryStore keeps records in process. It is used by tests and by the CLI.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]Record{}, now: time.Now}
}

func (m *MemoryStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	r, ok, err := m.Get(ctx, key)
	return r.Value, ok, err
}

func (m *MemoryStore) Get(_ context.Context, key string) (Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[key]
	if !ok {
		return Record{}, false, nil
	}
	r.Value = append([]byte(nil), r.Value...)
	return r, true, nil
}

func (m *MemoryStore) Save(_ context.Context, key, filter string, value []byte) Outcome {
	if key == "" {
		return Failed(errors.New("empty key"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UnixMilli()
	r, ok := m.records[key]
	if !ok {
		r = Record{Key: key, CreatedAt: now}
	}
	r.Filter = filter
	r.Value = append([]byte(nil), value...)
	r.UpdatedAt = now
	m.records[key] = r
	return Succeeded("saved")
}

func (m *MemoryStore) Delete(_ context.Context, key string) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[key]; !ok {
		return Outcome{Message: "not found"}
	}
	delete(m.records, key)
	return Succeeded("deleted")
}

func (m *MemoryStore) List(_ context.Context, filter string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Record{}
	for _, r := range m.records {
		if filter != "" && r.Filter != filter {
			continue
		}
		r.Value = append([]byte(nil), r.Value...)
		out = append(out, r)
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(rs []Record) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].UpdatedAt != rs[j].UpdatedAt {
			return rs[i].UpdatedAt > rs[j].UpdatedAt
		}
		return rs[i].Key < rs[j].Key
	})
}
