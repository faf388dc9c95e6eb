package agenda

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/models"
)

// Store is the replicated agenda collection.
type Store interface {
	ListAgendas() []models.Agenda
	FindAgenda(id string) (models.Agenda, bool)
	CreateAgenda(ctx context.Context, a models.Agenda) (models.Agenda, error)
	UpdateAgenda(ctx context.Context, a models.Agenda) error
	DeleteAgenda(ctx context.Context, id string) error
}

// Service saves and deletes agendas.
type Service struct {
	store  Store
	signer Signer
	now    func() time.Time
}

// NewService returns a Service whose new drafts are signed by signer.
func NewService(store Store, signer Signer) *Service {
	return &Service{store: store, signer: signer, now: time.Now}
}

// List returns agendas newest first.
func (s *Service) List() []models.Agenda {
	return s.store.ListAgendas()
}

// Get returns one agenda.
func (s *Service) Get(id string) (models.Agenda, error) {
	a, ok := s.store.FindAgenda(id)
	if !ok {
		return models.Agenda{}, fmt.Errorf("agenda %s: %w", id, apperr.ErrNotFound)
	}
	return a, nil
}

// New starts a draft for date with the default signer.
func (s *Service) New(date string) (*Draft, error) {
	return NewDraft(s.signer, date)
}

// Edit starts a draft of a stored agenda.
func (s *Service) Edit(id string) (*Draft, error) {
	a, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return EditDraft(a), nil
}

// Save creates or updates the draft's agenda depending on whether it was
// already persisted. After a create the draft becomes persisted.
func (s *Service) Save(ctx context.Context, actor models.User, d *Draft) (models.Agenda, error) {
	if actor.ID == "" {
		return models.Agenda{}, apperr.ErrUnauthorized
	}
	a := d.Agenda()
	if a.Date == "" {
		return models.Agenda{}, apperr.Invalid("Tanggal agenda wajib diisi.")
	}

	if d.persisted {
		cur, err := s.Get(a.ID)
		if err != nil {
			return models.Agenda{}, err
		}
		a.CreatedAt = cur.CreatedAt
		a.CreatedBy = cur.CreatedBy
		if err := s.store.UpdateAgenda(ctx, a); err != nil {
			return models.Agenda{}, fmt.Errorf("update agenda: %w", err)
		}
		d.agenda = a.Clone()
		return a, nil
	}

	a.ID = ""
	a.CreatedAt = s.now().UnixMilli()
	a.CreatedBy = actor.Name
	created, err := s.store.CreateAgenda(ctx, a)
	if err != nil {
		return models.Agenda{}, fmt.Errorf("create agenda: %w", err)
	}
	d.agenda = created.Clone()
	d.persisted = true
	return created, nil
}

// Delete removes one agenda.
func (s *Service) Delete(ctx context.Context, actor models.User, id string) error {
	if actor.ID == "" {
		return apperr.ErrUnauthorized
	}
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.store.DeleteAgenda(ctx, id); err != nil {
		return fmt.Errorf("delete agenda: %w", err)
	}
	return nil
}

// AddItem inserts an item into a stored agenda and saves it.
func (s *Service) AddItem(ctx context.Context, actor models.User, id string, item models.AgendaItem, position int) (models.Agenda, error) {
	return s.editItems(ctx, actor, id, func(d *Draft) error {
		_, err := d.AddItem(item, position)
		return err
	})
}

// EditItem replaces the item at index of a stored agenda and saves it.
func (s *Service) EditItem(ctx context.Context, actor models.User, id string, index int, item models.AgendaItem) (models.Agenda, error) {
	return s.editItems(ctx, actor, id, func(d *Draft) error {
		_, err := d.EditItem(index, item)
		return err
	})
}

// RemoveItem removes an item from a stored agenda and saves it.
func (s *Service) RemoveItem(ctx context.Context, actor models.User, id, itemID string) (models.Agenda, error) {
	return s.editItems(ctx, actor, id, func(d *Draft) error {
		return d.RemoveItem(itemID)
	})
}

func (s *Service) editItems(ctx context.Context, actor models.User, id string, fn func(*Draft) error) (models.Agenda, error) {
	d, err := s.Edit(id)
	if err != nil {
		return models.Agenda{}, err
	}
	if err := fn(d); err != nil {
		return models.Agenda{}, err
	}
	return s.Save(ctx, actor, d)
}
