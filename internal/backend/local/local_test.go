package local

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/esurat/internal/backend"
	"github.com/starford/esurat/internal/backend/backendtest"
	"github.com/starford/esurat/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func openTest(t *testing.T, path string) *Backend {
	t.Helper()
	b, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestContract(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) backend.Backend {
		return openTest(t, filepath.Join(t.TempDir(), "esurat.db"))
	})
}

func TestSeedUsersArePasswordless(t *testing.T) {
	b := openTest(t, filepath.Join(t.TempDir(), "esurat.db"))
	seed := b.SeedUsers()
	if len(seed) != 3 {
		t.Fatalf("seed = %d users, want 3", len(seed))
	}
	for _, u := range seed {
		if u.Password != "" {
			t.Errorf("seed user %s has a password", u.Username)
		}
	}
}

func TestCollectionStoredUnderOneKey(t *testing.T) {
	b := openTest(t, filepath.Join(t.TempDir(), "esurat.db"))
	ctx := context.Background()

	if _, err := b.Letters().Create(ctx, backendtest.SampleLetter()); err != nil {
		t.Fatal(err)
	}
	raw, ok, err := b.KV().Get(ctx, KeyLetters)
	if err != nil || !ok {
		t.Fatalf("Get(%s) ok=%v err=%v", KeyLetters, ok, err)
	}
	if raw[0] != '[' {
		t.Errorf("stored value is not a JSON list: %s", raw)
	}
}

func TestKVDeleteAbsentKey(t *testing.T) {
	b := openTest(t, filepath.Join(t.TempDir(), "esurat.db"))
	if err := b.KV().Delete(context.Background(), "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestWatch_ForeignWriteReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "esurat.db")
	own := openTest(t, path)
	other := openTest(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []backend.Collection
	go own.Watch(ctx, func(c backend.Collection) {
		mu.Lock()
		got = append(got, c)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	if _, err := other.Agendas().Create(ctx, models.Agenda{Date: "2026-01-23"}); err != nil {
		t.Fatal(err)
	}

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range got {
			if c == backend.Agendas {
				return true
			}
		}
		return false
	}, "expected agendas change from the other process")
}

func TestWatch_OwnWriteNotReported(t *testing.T) {
	b := openTest(t, filepath.Join(t.TempDir(), "esurat.db"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []backend.Collection
	go b.Watch(ctx, func(c backend.Collection) {
		mu.Lock()
		got = append(got, c)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	if _, err := b.Users().Create(ctx, models.User{Username: "x", Name: "X", Role: models.RoleIncoming}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 0 {
		t.Errorf("own write reported as change: %v", got)
	}
}
