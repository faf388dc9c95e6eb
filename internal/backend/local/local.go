package local

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/starford/esurat/internal/backend"
	"github.com/starford/esurat/internal/checksum"
	"github.com/starford/esurat/internal/models"
)

// Storage keys, one per collection.
const (
	KeyUsers   = "esurat_users"
	KeyLetters = "esurat_letters"
	KeyAgendas = "esurat_agendas"
)

var collectionKeys = map[backend.Collection]string{
	backend.Users:   KeyUsers,
	backend.Letters: KeyLetters,
	backend.Agendas: KeyAgendas,
}

// Backend is the local-only driver.
type Backend struct {
	kv     *KV
	logger *slog.Logger

	users   *listStore[models.User]
	letters *listStore[models.Letter]
	agendas *listStore[models.Agenda]

	mu   sync.Mutex
	seen map[string]string // key -> checksum of the last value this process saw
}

var _ backend.Backend = (*Backend)(nil)

// Open opens the SQLite file at path and returns the backend.
func Open(path string, logger *slog.Logger) (*Backend, error) {
	kv, err := OpenKV(path)
	if err != nil {
		return nil, err
	}
	return New(kv, logger), nil
}

// New builds the backend on an already opened KV.
func New(kv *KV, logger *slog.Logger) *Backend {
	b := &Backend{kv: kv, logger: logger, seen: make(map[string]string)}
	b.users = &listStore[models.User]{
		kv: kv, key: KeyUsers, written: b.remember,
		idOf:  func(u models.User) string { return u.ID },
		setID: func(u models.User, id string) models.User { u.ID = id; return u },
	}
	b.letters = &listStore[models.Letter]{
		kv: kv, key: KeyLetters, written: b.remember,
		idOf:  func(l models.Letter) string { return l.ID },
		setID: func(l models.Letter, id string) models.Letter { l.ID = id; return l },
	}
	b.agendas = &listStore[models.Agenda]{
		kv: kv, key: KeyAgendas, written: b.remember,
		idOf:  func(a models.Agenda) string { return a.ID },
		setID: func(a models.Agenda, id string) models.Agenda { a.ID = id; return a },
	}
	return b
}

func (b *Backend) Users() backend.Store[models.User]     { return b.users }
func (b *Backend) Letters() backend.Store[models.Letter] { return b.letters }
func (b *Backend) Agendas() backend.Store[models.Agenda] { return b.agendas }
func (b *Backend) Policy() backend.Policy                { return backend.PolicyLocal }

// KV exposes the key/value store so the session can share the same file.
func (b *Backend) KV() *KV { return b.kv }

// SeedUsers returns the passwordless default accounts.
func (b *Backend) SeedUsers() []models.User {
	return slices.Clone(backend.DefaultUsers(""))
}

func (b *Backend) Close() error {
	return b.kv.Close()
}

func (b *Backend) remember(key string, value []byte) {
	b.mu.Lock()
	b.seen[key] = checksum.Sum(value)
	b.mu.Unlock()
}

// changed re-reads every collection key and returns the collections whose
// stored value differs from what this process last saw.
func (b *Backend) changed(ctx context.Context) ([]backend.Collection, error) {
	var out []backend.Collection
	for _, c := range backend.Collections {
		key := collectionKeys[c]
		raw, _, err := b.kv.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("local: scan %s: %w", key, err)
		}
		sum := checksum.Sum(raw)

		b.mu.Lock()
		prev, known := b.seen[key]
		b.seen[key] = sum
		b.mu.Unlock()

		if known && prev != sum {
			out = append(out, c)
		}
	}
	return out, nil
}
