// Package letters implements the incoming/outgoing letter workflow:
// recording letters, reviewer flags, dispositions and AI analysis.
package letters

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/esurat/internal/analysis"
	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/attachment"
	"github.com/starford/esurat/internal/models"
)

// Store is the replicated letter collection.
type Store interface {
	ListLetters() []models.Letter
	FindLetter(id string) (models.Letter, bool)
	CreateLetter(ctx context.Context, l models.Letter) (models.Letter, error)
	UpdateLetter(ctx context.Context, l models.Letter) error
	DeleteLetter(ctx context.Context, id string) error
}

// Analyzer extracts a summary, category and priority from letter text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*analysis.Result, error)
}

// Service applies the letter rules on top of a Store.
type Service struct {
	store    Store
	analyzer Analyzer
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithAnalyzer enables AI analysis.
func WithAnalyzer(a Analyzer) Option {
	return func(s *Service) { s.analyzer = a }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a letter service.
func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Filter narrows List results.
type Filter struct {
	Direction models.Direction
	// Query matches reference number, subject or counterpart, case-insensitively.
	Query string
}

// List returns letters newest first, filtered.
func (s *Service) List(f Filter) []models.Letter {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	all := s.store.ListLetters()
	out := make([]models.Letter, 0, len(all))
	for _, l := range all {
		if f.Direction != "" && l.Direction != f.Direction {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(l.ReferenceNumber), q) &&
			!strings.Contains(strings.ToLower(l.Subject), q) &&
			!strings.Contains(strings.ToLower(l.Counterpart), q) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Get returns one letter.
func (s *Service) Get(id string) (models.Letter, error) {
	l, ok := s.store.FindLetter(id)
	if !ok {
		return models.Letter{}, fmt.Errorf("letter %s: %w", id, apperr.ErrNotFound)
	}
	return l, nil
}

// Add records a new letter on behalf of actor.
func (s *Service) Add(ctx context.Context, actor models.User, in models.Letter) (models.Letter, error) {
	if !in.Direction.Valid() {
		return models.Letter{}, apperr.Invalid("Jenis surat tidak valid.")
	}
	if !actor.CanManage(in.Direction) {
		return models.Letter{}, fmt.Errorf("add %s letter: %w", in.Direction, apperr.ErrForbidden)
	}
	if err := validate(in); err != nil {
		return models.Letter{}, err
	}
	if in.Disposition != nil {
		if in.Direction != models.DirectionIncoming {
			return models.Letter{}, apperr.Invalid(msgDispositionIncomingOnly)
		}
		if !actor.IsAdmin() && (in.Disposition.Instruction != "" || len(in.Disposition.Assignments) > 0) {
			return models.Letter{}, fmt.Errorf("add disposition: %w", apperr.ErrForbidden)
		}
		if err := validateStatuses(in.Disposition); err != nil {
			return models.Letter{}, err
		}
	}

	in.ID = ""
	in.CreatedAt = s.now().UnixMilli()
	in.CreatedBy = actor.Name
	created, err := s.store.CreateLetter(ctx, in)
	if err != nil {
		return models.Letter{}, fmt.Errorf("add letter: %w", err)
	}
	return created, nil
}

// Update replaces a letter. Direction and creation metadata are kept from
// the stored record. Only administrators may change disposition recipients
// or the instruction.
func (s *Service) Update(ctx context.Context, actor models.User, in models.Letter) (models.Letter, error) {
	cur, err := s.Get(in.ID)
	if err != nil {
		return models.Letter{}, err
	}
	if !actor.CanManage(cur.Direction) {
		return models.Letter{}, fmt.Errorf("update letter %s: %w", cur.ID, apperr.ErrForbidden)
	}

	in.Direction = cur.Direction
	in.CreatedAt = cur.CreatedAt
	in.CreatedBy = cur.CreatedBy
	if err := validate(in); err != nil {
		return models.Letter{}, err
	}
	if in.Disposition != nil && in.Direction != models.DirectionIncoming {
		return models.Letter{}, apperr.Invalid(msgDispositionIncomingOnly)
	}
	if !actor.IsAdmin() && !sameRouting(cur.Disposition, in.Disposition) {
		return models.Letter{}, fmt.Errorf("update disposition of %s: %w", cur.ID, apperr.ErrForbidden)
	}
	if err := validateStatuses(in.Disposition); err != nil {
		return models.Letter{}, err
	}

	if err := s.store.UpdateLetter(ctx, in); err != nil {
		return models.Letter{}, fmt.Errorf("update letter: %w", err)
	}
	return in, nil
}

// Delete removes one letter.
func (s *Service) Delete(ctx context.Context, actor models.User, id string) error {
	cur, err := s.Get(id)
	if err != nil {
		return err
	}
	if !actor.CanManage(cur.Direction) {
		return fmt.Errorf("delete letter %s: %w", id, apperr.ErrForbidden)
	}
	if err := s.store.DeleteLetter(ctx, id); err != nil {
		return fmt.Errorf("delete letter: %w", err)
	}
	return nil
}

// ToggleFlag flips check1 or check2 and nothing else.
func (s *Service) ToggleFlag(ctx context.Context, actor models.User, id string, flag models.Flag) (models.Letter, error) {
	return s.modify(ctx, id, func(l *models.Letter) error {
		if !actor.CanManage(l.Direction) {
			return apperr.ErrForbidden
		}
		switch flag {
		case models.FlagCheck1:
			l.Check1 = !l.Check1
		case models.FlagCheck2:
			l.Check2 = !l.Check2
		default:
			return apperr.Invalid("Penanda tidak dikenal.")
		}
		return nil
	})
}

// modify loads a letter, applies fn and writes the result back.
func (s *Service) modify(ctx context.Context, id string, fn func(l *models.Letter) error) (models.Letter, error) {
	l, err := s.Get(id)
	if err != nil {
		return models.Letter{}, err
	}
	if err := fn(&l); err != nil {
		return models.Letter{}, fmt.Errorf("modify letter %s: %w", id, err)
	}
	if err := s.store.UpdateLetter(ctx, l); err != nil {
		return models.Letter{}, fmt.Errorf("modify letter %s: %w", id, err)
	}
	return l, nil
}

func validate(l models.Letter) error {
	err := validation.ValidateStruct(&l,
		validation.Field(&l.ReferenceNumber, validation.Required.Error("Nomor surat wajib diisi.")),
		validation.Field(&l.Date,
			validation.Required.Error("Tanggal surat wajib diisi."),
			validation.Date(time.DateOnly).Error("Format tanggal harus YYYY-MM-DD.")),
		validation.Field(&l.Counterpart, validation.Required.Error("Pengirim/tujuan surat wajib diisi.")),
		validation.Field(&l.Subject, validation.Required.Error("Perihal surat wajib diisi.")),
	)
	if err != nil {
		return apperr.FromValidation(err)
	}
	return attachment.ValidateAll(l.Attachments)
}

func validateStatuses(d *models.Disposition) error {
	if d == nil {
		return nil
	}
	for _, a := range d.Assignments {
		if !a.Status.Valid() {
			return apperr.Invalid("Status disposisi tidak valid.")
		}
	}
	return nil
}

// sameRouting reports whether two dispositions have the same instruction and
// recipients in the same order. Statuses and dates are ignored.
func sameRouting(a, b *models.Disposition) bool {
	var ai, bi string
	if a != nil {
		ai = a.Instruction
	}
	if b != nil {
		bi = b.Instruction
	}
	return ai == bi && slices.Equal(a.Recipients(), b.Recipients())
}
