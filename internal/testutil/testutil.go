// Package testutil provides shared test helpers for setting up a seeded
// replica and an attachment store.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/esurat/internal/backend/memory"
	"github.com/starford/esurat/internal/models"
	"github.com/starford/esurat/internal/replica"
	"github.com/starford/esurat/internal/storage"
)

// Minimal files that pass content sniffing.
var (
	PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	PDF = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
)

// Logger returns a logger that only reports errors.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Replica returns a started replica over a fresh in-memory backend holding
// the three default accounts.
func Replica(t *testing.T, opts ...replica.Option) *replica.Replica {
	t.Helper()
	r := replica.New(memory.New(), Logger(), opts...)
	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	return r
}

// User returns the seeded account with the given username.
func User(t *testing.T, r *replica.Replica, username string) models.User {
	t.Helper()
	u, ok := r.Users().Find(func(u models.User) bool { return u.Username == username })
	if !ok {
		t.Fatalf("no user %s", username)
	}
	return u
}

// Blobs creates an attachment store in a temporary directory.
func Blobs(t *testing.T) *storage.FS {
	t.Helper()
	blobs, err := storage.NewFS(filepath.Join(t.TempDir(), "attachments"))
	if err != nil {
		t.Fatal(err)
	}
	return blobs
}
