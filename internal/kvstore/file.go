// AngelaMos | 2026
// file.go

package kvstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/angelamos/voltgear/internal/core"
)

// FileBackend keeps one JSON document per key inside a directory, the closest
// analogue to the browser profile's local storage. File names are the
// url-safe base64 of the key so arbitrary keys stay reversible.
type FileBackend struct {
	dir string
	mu  sync.Mutex
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(key string) string {
	name := base64.URLEncoding.EncodeToString([]byte(key))
	return filepath.Join(b.dir, name+".json")
}

func (b *FileBackend) Load(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := os.ReadFile(b.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %q: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}

	return doc, nil
}

func (b *FileBackend) Store(_ context.Context, key string, doc []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := b.path(key)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, doc, 0o644); err != nil {
		return fmt.Errorf("store %q: %w", key, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("store %q: %w", key, err)
	}

	return nil
}

func (b *FileBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := os.Remove(b.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Keys recovers stored keys by decoding the base64 file names, so no
// separate index file needs to stay in sync with the documents.
func (b *FileBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, fmt.Errorf("list store directory: %w", err)
	}

	keys := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(entry.Name(), ".json")
		if !ok {
			continue
		}
		raw, err := base64.URLEncoding.DecodeString(name)
		if err != nil {
			continue
		}
		if key := string(raw); strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *FileBackend) Ping(_ context.Context) error {
	if _, err := os.Stat(b.dir); err != nil {
		return fmt.Errorf("store directory unavailable: %w", err)
	}
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}

var _ Backend = (*FileBackend)(nil)
