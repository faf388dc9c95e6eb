package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/esurat/internal/agenda"
	"github.com/starford/esurat/internal/analysis"
	"github.com/starford/esurat/internal/backend"
	"github.com/starford/esurat/internal/letters"
	"github.com/starford/esurat/internal/replica"
	"github.com/starford/esurat/internal/storage"
	"github.com/starford/esurat/internal/users"
)

// core holds the started replica and the workflow services on top of it.
type core struct {
	backend backend.Backend
	replica *replica.Replica
	letters *letters.Service
	agendas *agenda.Service
	users   *users.Service
	blobs   *storage.FS
}

func newCore(ctx context.Context, cfg *Config, logger *slog.Logger, opts ...replica.Option) (*core, error) {
	if err := cfg.CheckCredentials(); err != nil {
		return nil, err
	}

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}

	rep := replica.New(b, logger, opts...)
	if err := rep.Start(ctx); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("load replica: %w", err)
	}

	blobs, err := storage.NewFS(cfg.Attachments.Path)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("init attachments: %w", err)
	}

	var letterOpts []letters.Option
	ai := analysis.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
	if ai.Enabled() {
		letterOpts = append(letterOpts, letters.WithAnalyzer(ai))
	} else {
		logger.Info("AI analysis disabled, no Gemini API key configured")
	}

	return &core{
		backend: b,
		replica: rep,
		letters: letters.NewService(rep, logger, letterOpts...),
		agendas: agenda.NewService(rep, agenda.Signer{Name: cfg.Agenda.SignerName, NIP: cfg.Agenda.SignerNIP}),
		users:   users.NewService(rep, allowPasswordless(cfg)),
		blobs:   blobs,
	}, nil
}

func (c *core) Close() error {
	return c.backend.Close()
}

// count returns the current size of collection col.
func (c *core) count(col backend.Collection) int {
	switch col {
	case backend.Users:
		return c.replica.Users().Len()
	case backend.Letters:
		return c.replica.Letters().Len()
	case backend.Agendas:
		return c.replica.Agendas().Len()
	}
	return 0
}
