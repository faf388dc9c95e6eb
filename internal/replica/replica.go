// Package replica keeps an in-memory copy of every collection and applies the
// backend's synchronisation policy after writes and change notifications.
package replica

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/esurat/internal/backend"
	"github.com/starford/esurat/internal/models"
)

// Replica mirrors users, letters and agendas of one backend.
type Replica struct {
	backend backend.Backend
	logger  *slog.Logger
	hooks   []func(backend.Collection)

	// loading serialises fetch-and-install per collection so an older
	// snapshot never replaces a newer one.
	loading map[backend.Collection]*sync.Mutex

	users   *List[models.User]
	letters *List[models.Letter]
	agendas *List[models.Agenda]
}

// Option configures a Replica.
type Option func(*Replica)

// WithChangeHook registers fn to run after any collection was refreshed.
func WithChangeHook(fn func(backend.Collection)) Option {
	return func(r *Replica) {
		r.hooks = append(r.hooks, fn)
	}
}

func newestLetterFirst(a, b models.Letter) int { return cmp.Compare(b.CreatedAt, a.CreatedAt) }
func newestAgendaFirst(a, b models.Agenda) int { return cmp.Compare(b.CreatedAt, a.CreatedAt) }

// New creates an empty replica. Call Start before use.
func New(b backend.Backend, logger *slog.Logger, opts ...Option) *Replica {
	r := &Replica{
		backend: b,
		logger:  logger,
		users:   newList(func(u models.User) models.User { return u }, nil),
		letters: newList(models.Letter.Clone, newestLetterFirst),
		agendas: newList(models.Agenda.Clone, newestAgendaFirst),
		loading: make(map[backend.Collection]*sync.Mutex, len(backend.Collections)),
	}
	for _, c := range backend.Collections {
		r.loading[c] = &sync.Mutex{}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Replica) Users() *List[models.User]     { return r.users }
func (r *Replica) Letters() *List[models.Letter] { return r.letters }
func (r *Replica) Agendas() *List[models.Agenda] { return r.agendas }

// Start loads every collection and seeds the default accounts when the user
// collection is empty.
func (r *Replica) Start(ctx context.Context) error {
	for _, c := range backend.Collections {
		if err := r.refresh(ctx, c, "initial"); err != nil {
			return err
		}
	}
	if r.users.Len() > 0 {
		return nil
	}

	seed := r.backend.SeedUsers()
	for _, u := range seed {
		if _, err := r.backend.Users().Create(ctx, u); err != nil {
			backendErrors.WithLabelValues(string(backend.Users), "seed").Inc()
			return fmt.Errorf("replica: seed user %s: %w", u.Username, err)
		}
	}
	r.logger.Info("Seeded default users", slog.Int("count", len(seed)))
	return r.refresh(ctx, backend.Users, "seed")
}

// Run follows the backend's change notifications until ctx is done.
func (r *Replica) Run(ctx context.Context) error {
	r.logger.Info("Replica sync running", slog.String("policy", r.backend.Policy().String()))
	return r.backend.Watch(ctx, func(c backend.Collection) {
		if err := r.refresh(ctx, c, "notify"); err != nil {
			r.logger.Warn("replica: refresh after notification failed",
				slog.String("collection", string(c)),
				slog.String("error", err.Error()))
		}
	})
}

func (r *Replica) refresh(ctx context.Context, c backend.Collection, trigger string) error {
	mu, ok := r.loading[c]
	if !ok {
		return fmt.Errorf("replica: unknown collection %q", c)
	}
	if err := r.load(ctx, c, mu); err != nil {
		backendErrors.WithLabelValues(string(c), "list").Inc()
		return fmt.Errorf("replica: load %s: %w", c, err)
	}

	refreshTotal.WithLabelValues(string(c), trigger).Inc()
	for _, hook := range r.hooks {
		hook(c)
	}
	return nil
}

func (r *Replica) load(ctx context.Context, c backend.Collection, mu *sync.Mutex) error {
	mu.Lock()
	defer mu.Unlock()

	var err error
	switch c {
	case backend.Users:
		var items []models.User
		if items, err = r.backend.Users().List(ctx); err == nil {
			r.users.set(items)
		}
	case backend.Letters:
		var items []models.Letter
		if items, err = r.backend.Letters().List(ctx); err == nil {
			r.letters.set(items)
		}
	case backend.Agendas:
		var items []models.Agenda
		if items, err = r.backend.Agendas().List(ctx); err == nil {
			r.agendas.set(items)
		}
	}
	return err
}

// afterWrite records a failed write or refreshes c when the policy asks for it.
func (r *Replica) afterWrite(ctx context.Context, c backend.Collection, op string, err error) error {
	if err != nil {
		backendErrors.WithLabelValues(string(c), op).Inc()
		return err
	}
	if r.backend.Policy().RefreshAfterWrite() {
		return r.refresh(ctx, c, "write")
	}
	return nil
}
