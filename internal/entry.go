// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/esurat/internal/api"
	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/backend"
	"github.com/starford/esurat/internal/replica"
	"github.com/starford/esurat/internal/sse"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.logger()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("backend", cfg.Backend.Driver),
		slog.String("attachments_path", cfg.Attachments.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	var c *core
	c, err = newCore(ctx, cfg, logger, replica.WithChangeHook(func(col backend.Collection) {
		if c != nil {
			broker.PublishChange(string(col), c.count(col))
		}
	}))
	if errors.Is(err, apperr.ErrMisconfigured) {
		logger.Error("Backend credentials missing, serving configuration notice",
			slog.String("backend", cfg.Backend.Driver),
			slog.String("error", err.Error()))
		return serve(ctx, logger, cfg.App.HTTP.Address(), misconfiguredRouter(), nil)
	}
	if err != nil {
		return err
	}
	defer c.Close()

	r := baseRouter()
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		if p, ok := c.backend.(interface{ Ping(context.Context) error }); ok {
			if err := p.Ping(req.Context()); err != nil {
				healthStatus(w, http.StatusServiceUnavailable, "unavailable")
				return
			}
		}
		healthStatus(w, http.StatusOK, "ok")
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/api", api.NewRouter(api.Deps{
		Directory:         c.replica,
		Letters:           c.letters,
		Agendas:           c.agendas,
		Users:             c.users,
		Blobs:             c.blobs,
		Events:            broker,
		AllowPasswordless: allowPasswordless(cfg),
		AuthEnabled:       cfg.Auth.AuthEnabled(),
		Token:             cfg.Auth.Token,
	}))
	r.Get("/attachments/{name}", api.AttachmentServer(c.blobs))

	return serve(ctx, logger, cfg.App.HTTP.Address(), r, c.replica.Run)
}

// serve runs handler until a signal arrives or ctx is cancelled. A non-nil
// background func runs alongside the server in the same group.
func serve(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler, background func(context.Context) error) error {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	logger.Info("Server starting...", slog.String("http_address", addr))

	g, gCtx := errgroup.WithContext(ctx)

	if background != nil {
		g.Go(func() error {
			return background(gCtx)
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Stops the background loop when the shutdown came from a signal.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

func baseRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		healthStatus(w, http.StatusOK, "ok")
	})
	return r
}

func healthStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}

const misconfiguredPage = `<!DOCTYPE html>
<html lang="id">
<head><meta charset="utf-8"><title>E-Surat - Konfigurasi belum lengkap</title></head>
<body>
<h1>Konfigurasi belum lengkap</h1>
<p>Kredensial basis data belum diatur. Lengkapi berkas konfigurasi atau variabel
lingkungan server, lalu jalankan ulang aplikasi.</p>
</body>
</html>
`

// misconfiguredRouter answers every route except the health checks with a
// 503 notice page.
func misconfiguredRouter() http.Handler {
	r := baseRouter()
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		healthStatus(w, http.StatusServiceUnavailable, "misconfigured")
	})
	notice := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(misconfiguredPage))
	}
	r.NotFound(notice)
	r.MethodNotAllowed(notice)
	return r
}
