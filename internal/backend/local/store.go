package local

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/models"
)

// listStore keeps a whole collection as one JSON array under key.
// Every write rewrites the full list.
type listStore[T any] struct {
	kv      *KV
	key     string
	idOf    func(T) string
	setID   func(T, string) T
	written func(key string, value []byte)
}

func (s *listStore[T]) List(ctx context.Context) ([]T, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil || !ok {
		return nil, err
	}
	return decodeList[T](s.key, raw)
}

func (s *listStore[T]) Create(ctx context.Context, v T) (T, error) {
	if s.idOf(v) == "" {
		v = s.setID(v, models.NewID())
	}
	err := s.mutate(ctx, func(items []T) ([]T, error) {
		if slices.IndexFunc(items, s.match(s.idOf(v))) >= 0 {
			return nil, fmt.Errorf("local: create %s: %w", s.idOf(v), apperr.ErrAlreadyExists)
		}
		return append(items, v), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func (s *listStore[T]) Update(ctx context.Context, v T) error {
	id := s.idOf(v)
	return s.mutate(ctx, func(items []T) ([]T, error) {
		i := slices.IndexFunc(items, s.match(id))
		if i < 0 {
			return nil, fmt.Errorf("local: update %s: %w", id, apperr.ErrNotFound)
		}
		items[i] = v
		return items, nil
	})
}

func (s *listStore[T]) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(items []T) ([]T, error) {
		i := slices.IndexFunc(items, s.match(id))
		if i < 0 {
			return nil, fmt.Errorf("local: delete %s: %w", id, apperr.ErrNotFound)
		}
		return slices.Delete(items, i, i+1), nil
	})
}

func (s *listStore[T]) mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	next, err := s.kv.Update(ctx, s.key, func(cur []byte) ([]byte, error) {
		items, err := decodeList[T](s.key, cur)
		if err != nil {
			return nil, err
		}
		items, err = fn(items)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
		return json.Marshal(items)
	})
	if err != nil {
		return err
	}
	if s.written != nil {
		s.written(s.key, next)
	}
	return nil
}

func (s *listStore[T]) match(id string) func(T) bool {
	return func(v T) bool { return s.idOf(v) == id }
}

func decodeList[T any](key string, raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("local: decode %s: %w", key, err)
	}
	return items, nil
}
