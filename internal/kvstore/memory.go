// AngelaMos | 2026
// memory.go

package kvstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/angelamos/voltgear/internal/core"
)

// MemoryBackend holds documents in process memory. Used by tests and as a
// throwaway demo store.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

func (b *MemoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	doc, ok := b.docs[key]
	if !ok {
		return nil, fmt.Errorf("load %q: %w", key, core.ErrNotFound)
	}

	cp := make([]byte, len(doc))
	copy(cp, doc)
	return cp, nil
}

func (b *MemoryBackend) Store(_ context.Context, key string, doc []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cp := make([]byte, len(doc))
	copy(cp, doc)
	b.docs[key] = cp
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.docs, key)
	return nil
}

func (b *MemoryBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := []string{}
	for k := range b.docs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *MemoryBackend) Ping(_ context.Context) error {
	return nil
}

func (b *MemoryBackend) Close() error {
	return nil
}

var _ Backend = (*MemoryBackend)(nil)
