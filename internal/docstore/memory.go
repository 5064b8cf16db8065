package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Memory is an in-process Store used by tests and NO_AUTH local runs.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]Document)}
}

func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return deepCopy(doc), nil
}

func (m *Memory) Set(_ context.Context, collection, id string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll := m.collections[collection]
	if coll == nil {
		coll = make(map[string]Document)
		m.collections[collection] = coll
	}
	coll[id] = deepCopy(doc)
	return nil
}

func (m *Memory) Update(_ context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		doc[k] = deepCopyValue(v)
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections[collection], id)
	return nil
}

func (m *Memory) Add(ctx context.Context, collection string, doc Document) (string, error) {
	id := ulid.Make().String()
	if err := m.Set(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Memory) QueryOrdered(_ context.Context, collection, orderField string, desc bool) ([]Keyed, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Keyed, 0, len(m.collections[collection]))
	for id, doc := range m.collections[collection] {
		out = append(out, Keyed{ID: id, Doc: deepCopy(doc)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a := fmt.Sprintf("%v", out[i].Doc[orderField])
		b := fmt.Sprintf("%v", out[j].Doc[orderField])
		if desc {
			return a > b
		}
		return a < b
	})
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func deepCopy(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case Document:
		return deepCopy(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
