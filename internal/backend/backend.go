// Package backend defines the persistence contract shared by every storage
// driver. A driver exposes the users, letters and agendas collections and
// tells the replica how it learns about changes.
package backend

import (
	"context"

	"github.com/starford/esurat/internal/models"
)

// Collection names one of the synchronised collections.
type Collection string

const (
	Users   Collection = "users"
	Letters Collection = "letters"
	Agendas Collection = "agendas"
)

// Collections lists every collection in load order.
var Collections = []Collection{Users, Letters, Agendas}

// Driver names accepted in configuration.
const (
	DriverMemory   = "memory"
	DriverLocal    = "local"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Policy describes how the in-memory replica is kept in sync after writes.
type Policy int

const (
	// PolicyLocal persists the whole collection locally and refreshes immediately.
	PolicyLocal Policy = iota
	// PolicyPush relies on the backend pushing a change notification.
	PolicyPush
	// PolicyPoll re-fetches the full collection after every own write and on
	// change notifications from other clients.
	PolicyPoll
)

func (p Policy) String() string {
	switch p {
	case PolicyLocal:
		return "local"
	case PolicyPush:
		return "push"
	case PolicyPoll:
		return "poll"
	}
	return "unknown"
}

// RefreshAfterWrite reports whether a successful write must be followed by an
// explicit re-fetch of the collection.
func (p Policy) RefreshAfterWrite() bool {
	return p != PolicyPush
}

// Store is a single collection of T.
type Store[T any] interface {
	// List returns every record.
	List(ctx context.Context) ([]T, error)
	// Create stores v and returns it with its assigned id.
	Create(ctx context.Context, v T) (T, error)
	// Update replaces the record with the same id. Missing records yield apperr.ErrNotFound.
	Update(ctx context.Context, v T) error
	// Delete removes exactly the record with the given id.
	Delete(ctx context.Context, id string) error
}

// ChangeFunc is invoked when a collection changed outside the caller's own writes.
type ChangeFunc func(c Collection)

// Backend is one storage driver.
type Backend interface {
	Users() Store[models.User]
	Letters() Store[models.Letter]
	Agendas() Store[models.Agenda]
	Policy() Policy
	// Watch blocks until ctx is done, calling fn for every change notification.
	Watch(ctx context.Context, fn ChangeFunc) error
	// SeedUsers returns the accounts created when the user collection is empty.
	SeedUsers() []models.User
	Close() error
}
