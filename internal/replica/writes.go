package replica

import (
	"context"

	"github.com/starford/esurat/internal/backend"
	"github.com/starford/esurat/internal/models"
)

func (r *Replica) ListUsers() []models.User     { return r.users.Snapshot() }
func (r *Replica) ListLetters() []models.Letter { return r.letters.Snapshot() }
func (r *Replica) ListAgendas() []models.Agenda { return r.agendas.Snapshot() }

// FindUser returns the user with the given id.
func (r *Replica) FindUser(id string) (models.User, bool) {
	return r.users.Find(func(u models.User) bool { return u.ID == id })
}

// FindLetter returns the letter with the given id.
func (r *Replica) FindLetter(id string) (models.Letter, bool) {
	return r.letters.Find(func(l models.Letter) bool { return l.ID == id })
}

// FindAgenda returns the agenda with the given id.
func (r *Replica) FindAgenda(id string) (models.Agenda, bool) {
	return r.agendas.Find(func(a models.Agenda) bool { return a.ID == id })
}

func (r *Replica) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	created, err := r.backend.Users().Create(ctx, u)
	if err := r.afterWrite(ctx, backend.Users, "create", err); err != nil {
		return models.User{}, err
	}
	return created, nil
}

func (r *Replica) UpdateUser(ctx context.Context, u models.User) error {
	return r.afterWrite(ctx, backend.Users, "update", r.backend.Users().Update(ctx, u))
}

func (r *Replica) DeleteUser(ctx context.Context, id string) error {
	return r.afterWrite(ctx, backend.Users, "delete", r.backend.Users().Delete(ctx, id))
}

func (r *Replica) CreateLetter(ctx context.Context, l models.Letter) (models.Letter, error) {
	created, err := r.backend.Letters().Create(ctx, l)
	if err := r.afterWrite(ctx, backend.Letters, "create", err); err != nil {
		return models.Letter{}, err
	}
	return created, nil
}

func (r *Replica) UpdateLetter(ctx context.Context, l models.Letter) error {
	return r.afterWrite(ctx, backend.Letters, "update", r.backend.Letters().Update(ctx, l))
}

func (r *Replica) DeleteLetter(ctx context.Context, id string) error {
	return r.afterWrite(ctx, backend.Letters, "delete", r.backend.Letters().Delete(ctx, id))
}

func (r *Replica) CreateAgenda(ctx context.Context, a models.Agenda) (models.Agenda, error) {
	created, err := r.backend.Agendas().Create(ctx, a)
	if err := r.afterWrite(ctx, backend.Agendas, "create", err); err != nil {
		return models.Agenda{}, err
	}
	return created, nil
}

func (r *Replica) UpdateAgenda(ctx context.Context, a models.Agenda) error {
	return r.afterWrite(ctx, backend.Agendas, "update", r.backend.Agendas().Update(ctx, a))
}

func (r *Replica) DeleteAgenda(ctx context.Context, id string) error {
	return r.afterWrite(ctx, backend.Agendas, "delete", r.backend.Agendas().Delete(ctx, id))
}
