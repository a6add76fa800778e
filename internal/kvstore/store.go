// AngelaMos | 2026
// store.go

package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"

	"github.com/angelamos/voltgear/internal/core"
)

// Store is the adapter every manager persists through: JSON documents under
// string keys, synchronous and best-effort. Read, write, and decode failures
// are logged here and converted into a caller-supplied default (Get) or a
// boolean failure flag (Set, Remove); they are never propagated. Concurrent
// writers race and the last write wins.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, logger: logger}
}

// Get decodes the document under key into dest, which must be a non-nil
// pointer. When the key is absent, the read fails, or the document does not
// decode cleanly, dest is left at whatever default the caller initialized it
// to and Get returns false. Decoding goes through a scratch value so a
// partially valid document never leaks half-decoded fields into dest.
func (s *Store) Get(ctx context.Context, key string, dest any) bool {
	doc, err := s.backend.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.logger.Error("store read failed", "key", key, "error", err)
		}
		return false
	}

	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		s.logger.Error("store decode target is not a pointer", "key", key)
		return false
	}

	scratch := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(doc, scratch.Interface()); err != nil {
		s.logger.Error("store decode failed", "key", key, "error", err)
		return false
	}
	rv.Elem().Set(scratch.Elem())

	return true
}

func (s *Store) Set(ctx context.Context, key string, value any) bool {
	doc, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("store encode failed", "key", key, "error", err)
		return false
	}

	if err := s.backend.Store(ctx, key, doc); err != nil {
		s.logger.Error("store write failed", "key", key, "error", err)
		return false
	}

	return true
}

func (s *Store) Remove(ctx context.Context, key string) bool {
	if err := s.backend.Delete(ctx, key); err != nil {
		s.logger.Error("store delete failed", "key", key, "error", err)
		return false
	}
	return true
}

// Keys lists stored keys under prefix, sorted. A listing failure is
// logged and reads as an empty store.
func (s *Store) Keys(ctx context.Context, prefix string) []string {
	keys, err := s.backend.Keys(ctx, prefix)
	if err != nil {
		s.logger.Error("store key listing failed", "prefix", prefix, "error", err)
		return []string{}
	}
	return keys
}

func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *Store) Close() error {
	return s.backend.Close()
}
