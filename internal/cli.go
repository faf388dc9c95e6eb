package internal

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/starford/esurat/internal/backend/local"
	"github.com/starford/esurat/internal/mcpserver"
	"github.com/starford/esurat/internal/models"
	"github.com/starford/esurat/internal/session"
)

// sessionCore is a started core plus the persisted CLI session.
type sessionCore struct {
	*core
	kv      *local.KV
	session *session.Manager
}

func openSession(ctx context.Context, app *application, logger *slog.Logger) (*sessionCore, error) {
	cfg := app.config
	c, err := newCore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := ensureDir(cfg.Session.Path); err != nil {
		_ = c.Close()
		return nil, err
	}
	kv, err := local.OpenKV(cfg.Session.Path)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("open session store: %w", err)
	}
	mgr := session.NewManager(c.replica, session.NewStore(kv), allowPasswordless(cfg))
	if _, err := mgr.Restore(ctx); err != nil {
		logger.Warn("Stored session could not be restored", slog.String("error", err.Error()))
	}
	return &sessionCore{core: c, kv: kv, session: mgr}, nil
}

func (s *sessionCore) Close() error {
	_ = s.kv.Close()
	return s.core.Close()
}

// RunMCP serves the MCP tools over stdio as the signed-in CLI user.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()
	slog.SetDefault(logger)

	s, err := openSession(ctx, app, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	srv := mcpserver.New(s.letters, s.agendas, s.replica, s.blobs, s.session)
	if u, ok := s.session.Current(); ok {
		logger.Info("MCP server starting", slog.String("user", u.Username))
	} else {
		logger.Info("MCP server starting without a signed-in user")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.replica.Run(gCtx)
	})
	g.Go(func() error {
		// Stdin closing ends the session and stops the replica loop.
		defer cancel()
		return srv.ServeStdio()
	})
	return g.Wait()
}

// Login signs username in and persists the session for later commands.
func Login(ctx context.Context, username, password string, opts ...Option) (models.User, error) {
	app, err := newApplication(opts)
	if err != nil {
		return models.User{}, err
	}
	s, err := openSession(ctx, app, app.logger())
	if err != nil {
		return models.User{}, err
	}
	defer s.Close()
	return s.session.Login(ctx, username, password)
}

// Logout clears the persisted session.
func Logout(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	s, err := openSession(ctx, app, app.logger())
	if err != nil {
		return err
	}
	defer s.Close()
	return s.session.Logout(ctx)
}

// Whoami returns the persisted user, if any.
func Whoami(ctx context.Context, opts ...Option) (models.User, bool, error) {
	app, err := newApplication(opts)
	if err != nil {
		return models.User{}, false, err
	}
	s, err := openSession(ctx, app, app.logger())
	if err != nil {
		return models.User{}, false, err
	}
	defer s.Close()
	u, ok := s.session.Current()
	return u, ok, nil
}
