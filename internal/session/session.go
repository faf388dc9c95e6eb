// Package session authenticates users against the replicated user list and
// keeps the signed-in user in a durable local store.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/models"
)

// StorageKey is the key under which the signed-in user is persisted.
const StorageKey = "esurat_auth"

// Authenticate finds the account whose username matches case-insensitively
// and checks the password. A stored password must match exactly. When
// allowPasswordless is set, an account without a password accepts an empty one.
func Authenticate(users []models.User, username, password string, allowPasswordless bool) (models.User, error) {
	username = strings.TrimSpace(username)
	for _, u := range users {
		if !strings.EqualFold(u.Username, username) {
			continue
		}
		switch {
		case u.Password != "" && u.Password == password:
			return u, nil
		case allowPasswordless && u.Password == "" && password == "":
			return u, nil
		}
		break
	}
	return models.User{}, fmt.Errorf("authenticate %q: %w", username, apperr.ErrInvalidCredentials)
}

// KV is the durable key/value store the session is kept in.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store persists one user under StorageKey.
type Store struct {
	kv KV
}

// NewStore returns a Store over kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Load returns the persisted user, or nil when nobody is signed in.
func (s *Store) Load(ctx context.Context) (*models.User, error) {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil || !ok {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return &u, nil
}

// Save persists u without its password.
func (s *Store) Save(ctx context.Context, u models.User) error {
	raw, err := json.Marshal(u.Public())
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	return s.kv.Set(ctx, StorageKey, raw)
}

// Clear removes the persisted user.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, StorageKey)
}

// UserSource returns the current user list.
type UserSource interface {
	ListUsers() []models.User
}

// Manager holds the signed-in user of this process.
type Manager struct {
	users             UserSource
	store             *Store
	allowPasswordless bool

	mu      sync.RWMutex
	current *models.User
}

// NewManager returns a Manager with nobody signed in.
func NewManager(users UserSource, store *Store, allowPasswordless bool) *Manager {
	return &Manager{users: users, store: store, allowPasswordless: allowPasswordless}
}

// Restore loads the persisted user. A user that no longer exists in the
// user list is dropped and the stored session cleared.
func (m *Manager) Restore(ctx context.Context) (*models.User, error) {
	u, err := m.store.Load(ctx)
	if err != nil || u == nil {
		return nil, err
	}
	for _, known := range m.users.ListUsers() {
		if known.ID == u.ID {
			pub := known.Public()
			m.set(&pub)
			return &pub, nil
		}
	}
	return nil, m.store.Clear(ctx)
}

// Login authenticates and persists the user. Nothing is stored on failure.
func (m *Manager) Login(ctx context.Context, username, password string) (models.User, error) {
	u, err := Authenticate(m.users.ListUsers(), username, password, m.allowPasswordless)
	if err != nil {
		return models.User{}, err
	}
	if err := m.store.Save(ctx, u); err != nil {
		return models.User{}, err
	}
	pub := u.Public()
	m.set(&pub)
	return pub, nil
}

// Logout clears the current and the persisted user.
func (m *Manager) Logout(ctx context.Context) error {
	m.set(nil)
	return m.store.Clear(ctx)
}

// Current returns the signed-in user.
func (m *Manager) Current() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return models.User{}, false
	}
	return *m.current, true
}

func (m *Manager) set(u *models.User) {
	m.mu.Lock()
	m.current = u
	m.mu.Unlock()
}
