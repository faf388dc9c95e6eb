package mongo

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/starford/esurat/internal/backend"
	"github.com/starford/esurat/internal/backend/backendtest"
	"github.com/starford/esurat/internal/models"
)

// setupMongo starts a single-node replica set so change streams work.
func setupMongo(t *testing.T) string {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION is not set")
	}

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	return uri
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestContract(t *testing.T) {
	uri := setupMongo(t)
	backendtest.Run(t, func(t *testing.T) backend.Backend {
		b, err := Connect(context.Background(), uri, "esurat_test_"+uuid.NewString()[:8], testLogger())
		require.NoError(t, err)
		t.Cleanup(func() { b.Close() })
		return b
	})
}

func TestDuplicateUsername(t *testing.T) {
	uri := setupMongo(t)
	ctx := context.Background()
	b, err := Connect(ctx, uri, "esurat_dup", testLogger())
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Users().Create(ctx, models.User{Username: "admin", Name: "A", Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = b.Users().Create(ctx, models.User{Username: "admin", Name: "B", Role: models.RoleAdmin})
	require.Error(t, err)
}

func TestWatchPushesChanges(t *testing.T) {
	uri := setupMongo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := Connect(ctx, uri, "esurat_watch", testLogger())
	require.NoError(t, err)
	defer b.Close()

	var mu sync.Mutex
	seen := map[backend.Collection]bool{}
	go b.Watch(ctx, func(c backend.Collection) {
		mu.Lock()
		seen[c] = true
		mu.Unlock()
	})
	time.Sleep(500 * time.Millisecond)

	_, err = b.Letters().Create(ctx, backendtest.SampleLetter())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen[backend.Letters]
	}, 10*time.Second, 100*time.Millisecond)
}
