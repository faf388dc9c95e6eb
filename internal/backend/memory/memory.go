// Package memory is a process-local backend used by tests and demo runs.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/backend"
	"github.com/starford/esurat/internal/models"
)

// Backend keeps every collection in memory.
type Backend struct {
	users   *store[models.User]
	letters *store[models.Letter]
	agendas *store[models.Agenda]
	seed    []models.User
}

var _ backend.Backend = (*Backend)(nil)

// New returns an empty backend seeded with the three default accounts on first load.
func New() *Backend {
	return &Backend{
		users: newStore(
			func(u models.User) string { return u.ID },
			func(u models.User, id string) models.User { u.ID = id; return u },
			func(u models.User) models.User { return u },
		),
		letters: newStore(
			func(l models.Letter) string { return l.ID },
			func(l models.Letter, id string) models.Letter { l.ID = id; return l },
			models.Letter.Clone,
		),
		agendas: newStore(
			func(a models.Agenda) string { return a.ID },
			func(a models.Agenda, id string) models.Agenda { a.ID = id; return a },
			models.Agenda.Clone,
		),
		seed: backend.DefaultUsers(backend.SeedPassword),
	}
}

func (b *Backend) Users() backend.Store[models.User]     { return b.users }
func (b *Backend) Letters() backend.Store[models.Letter] { return b.letters }
func (b *Backend) Agendas() backend.Store[models.Agenda] { return b.agendas }
func (b *Backend) Policy() backend.Policy                { return backend.PolicyLocal }
func (b *Backend) SeedUsers() []models.User              { return slices.Clone(b.seed) }
func (b *Backend) Close() error                          { return nil }

// Watch has nothing to observe; it only waits for ctx.
func (b *Backend) Watch(ctx context.Context, _ backend.ChangeFunc) error {
	<-ctx.Done()
	return nil
}

type store[T any] struct {
	mu    sync.RWMutex
	items []T
	idOf  func(T) string
	setID func(T, string) T
	clone func(T) T
}

func newStore[T any](idOf func(T) string, setID func(T, string) T, clone func(T) T) *store[T] {
	return &store[T]{idOf: idOf, setID: setID, clone: clone}
}

func (s *store[T]) List(_ context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	for i, v := range s.items {
		out[i] = s.clone(v)
	}
	return out, nil
}

func (s *store[T]) Create(_ context.Context, v T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.idOf(v)
	if id == "" {
		id = models.NewID()
		v = s.setID(v, id)
	}
	if s.index(id) >= 0 {
		var zero T
		return zero, fmt.Errorf("memory: create %s: %w", id, apperr.ErrAlreadyExists)
	}
	s.items = append(s.items, s.clone(v))
	return s.clone(v), nil
}

func (s *store[T]) Update(_ context.Context, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(s.idOf(v))
	if i < 0 {
		return fmt.Errorf("memory: update %s: %w", s.idOf(v), apperr.ErrNotFound)
	}
	s.items[i] = s.clone(v)
	return nil
}

func (s *store[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("memory: delete %s: %w", id, apperr.ErrNotFound)
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func (s *store[T]) index(id string) int {
	return slices.IndexFunc(s.items, func(v T) bool { return s.idOf(v) == id })
}
