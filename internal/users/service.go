// Package users manages the accounts that may sign in. Every operation is
// reserved to administrators.
package users

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/models"
)

const msgUsernameTaken = "Username sudah digunakan."

// Store is the replicated users collection.
type Store interface {
	ListUsers() []models.User
	FindUser(id string) (models.User, bool)
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	UpdateUser(ctx context.Context, u models.User) error
	DeleteUser(ctx context.Context, id string) error
}

const msgPasswordRequired = "Password wajib diisi."

// Service implements account management.
type Service struct {
	store             Store
	allowPasswordless bool
}

// NewService returns a Service over store. With allowPasswordless, accounts
// may be created without a password and an existing password may be cleared,
// matching the sign-in rule of the same drivers.
func NewService(store Store, allowPasswordless bool) *Service {
	return &Service{store: store, allowPasswordless: allowPasswordless}
}

// List returns every account without passwords.
func (s *Service) List(actor models.User) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	all := s.store.ListUsers()
	for i := range all {
		all[i] = all[i].Public()
	}
	return all, nil
}

// Add creates an account. Usernames are stored trimmed and lower-case and must
// be unique.
func (s *Service) Add(ctx context.Context, actor models.User, in models.User) (models.User, error) {
	if !actor.IsAdmin() {
		return models.User{}, apperr.ErrForbidden
	}
	in = normalize(in)
	if err := validate(in, !s.allowPasswordless); err != nil {
		return models.User{}, err
	}
	if s.taken(in.Username, "") {
		return models.User{}, taken()
	}
	in.ID = ""
	u, err := s.store.CreateUser(ctx, in)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u.Public(), nil
}

// Update edits an account. An empty password keeps the stored one. The built-in
// administrator cannot be renamed.
func (s *Service) Update(ctx context.Context, actor models.User, in models.User) (models.User, error) {
	if !actor.IsAdmin() {
		return models.User{}, apperr.ErrForbidden
	}
	cur, ok := s.store.FindUser(in.ID)
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", in.ID, apperr.ErrNotFound)
	}
	in = normalize(in)
	if cur.IsMainAdmin() && in.Username != cur.Username {
		return models.User{}, apperr.Invalid("Username admin utama tidak dapat diubah.")
	}
	if in.Password == "" {
		in.Password = cur.Password
	}
	if err := validate(in, false); err != nil {
		return models.User{}, err
	}
	if s.taken(in.Username, in.ID) {
		return models.User{}, taken()
	}
	if err := s.store.UpdateUser(ctx, in); err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return in.Public(), nil
}

// ClearPassword removes the password of an account so it signs in with an
// empty one. Only drivers that allow passwordless sign-in accept it.
func (s *Service) ClearPassword(ctx context.Context, actor models.User, id string) (models.User, error) {
	if !actor.IsAdmin() {
		return models.User{}, apperr.ErrForbidden
	}
	if !s.allowPasswordless {
		return models.User{}, apperr.Invalid(msgPasswordRequired)
	}
	cur, ok := s.store.FindUser(id)
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	cur.Password = ""
	if err := s.store.UpdateUser(ctx, cur); err != nil {
		return models.User{}, fmt.Errorf("clear password: %w", err)
	}
	return cur.Public(), nil
}

// Delete removes an account. The built-in administrator cannot be deleted.
func (s *Service) Delete(ctx context.Context, actor models.User, id string) error {
	if !actor.IsAdmin() {
		return apperr.ErrForbidden
	}
	cur, ok := s.store.FindUser(id)
	if !ok {
		return fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	if cur.IsMainAdmin() {
		return fmt.Errorf("delete main admin: %w", apperr.ErrForbidden)
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *Service) taken(username, exceptID string) bool {
	for _, u := range s.store.ListUsers() {
		if u.ID != exceptID && strings.EqualFold(u.Username, username) {
			return true
		}
	}
	return false
}

func taken() error {
	return fmt.Errorf("%w: %w", apperr.ErrAlreadyExists, apperr.Invalid(msgUsernameTaken))
}

func normalize(u models.User) models.User {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.Name = strings.TrimSpace(u.Name)
	return u
}

func validate(u models.User, requirePassword bool) error {
	passwordRules := []validation.Rule{}
	if requirePassword {
		passwordRules = append(passwordRules, validation.Required.Error(msgPasswordRequired))
	}
	err := validation.ValidateStruct(&u,
		validation.Field(&u.Username, validation.Required.Error("Username wajib diisi.")),
		validation.Field(&u.Name, validation.Required.Error("Nama wajib diisi.")),
		validation.Field(&u.Password, passwordRules...),
		validation.Field(&u.Role, validation.By(func(any) error {
			if !u.Role.Valid() {
				return validation.NewError("role", "Peran tidak dikenal.")
			}
			return nil
		})),
	)
	return apperr.FromValidation(err)
}
