package letters

import (
	"context"
	"strings"
	"time"

	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/models"
)

const msgDispositionIncomingOnly = "Disposisi hanya tersedia untuk surat masuk."

// OpenDisposition attaches an empty disposition dated today to an incoming
// letter that has none. A letter that already has one is returned unchanged.
func (s *Service) OpenDisposition(ctx context.Context, actor models.User, id string) (models.Letter, error) {
	l, err := s.Get(id)
	if err != nil {
		return models.Letter{}, err
	}
	if l.Disposition != nil {
		return l, nil
	}
	return s.modify(ctx, id, func(l *models.Letter) error {
		if err := s.ensureDisposition(l); err != nil {
			return err
		}
		if !actor.CanManage(l.Direction) {
			return apperr.ErrForbidden
		}
		return nil
	})
}

// AddRecipient appends a waiting assignment. Blank names are ignored.
func (s *Service) AddRecipient(ctx context.Context, actor models.User, id, recipient string) (models.Letter, error) {
	if !actor.IsAdmin() {
		return models.Letter{}, apperr.ErrForbidden
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return s.Get(id)
	}
	return s.modify(ctx, id, func(l *models.Letter) error {
		if err := s.ensureDisposition(l); err != nil {
			return err
		}
		l.Disposition.Assignments = append(l.Disposition.Assignments, models.Assignment{
			Recipient: recipient,
			Status:    models.StatusWaiting,
		})
		return nil
	})
}

// RemoveRecipient drops the assignment at index, keeping the order of the rest.
func (s *Service) RemoveRecipient(ctx context.Context, actor models.User, id string, index int) (models.Letter, error) {
	if !actor.IsAdmin() {
		return models.Letter{}, apperr.ErrForbidden
	}
	return s.modify(ctx, id, func(l *models.Letter) error {
		if err := checkIndex(l.Disposition, index); err != nil {
			return err
		}
		a := l.Disposition.Assignments
		l.Disposition.Assignments = append(a[:index:index], a[index+1:]...)
		return nil
	})
}

// SetInstruction replaces the disposition instruction.
func (s *Service) SetInstruction(ctx context.Context, actor models.User, id, instruction string) (models.Letter, error) {
	if !actor.IsAdmin() {
		return models.Letter{}, apperr.ErrForbidden
	}
	return s.modify(ctx, id, func(l *models.Letter) error {
		if err := s.ensureDisposition(l); err != nil {
			return err
		}
		l.Disposition.Instruction = instruction
		return nil
	})
}

// SetAssignmentStatus changes the status of one assignment. Every role may do
// this and any status may follow any other.
func (s *Service) SetAssignmentStatus(ctx context.Context, actor models.User, id string, index int, status models.AssignmentStatus) (models.Letter, error) {
	if !status.Valid() {
		return models.Letter{}, apperr.Invalid("Status disposisi tidak valid.")
	}
	return s.modify(ctx, id, func(l *models.Letter) error {
		if err := checkIndex(l.Disposition, index); err != nil {
			return err
		}
		l.Disposition.Assignments[index].Status = status
		return nil
	})
}

func (s *Service) ensureDisposition(l *models.Letter) error {
	if l.Direction != models.DirectionIncoming {
		return apperr.Invalid(msgDispositionIncomingOnly)
	}
	if l.Disposition == nil {
		l.Disposition = &models.Disposition{
			Assignments: []models.Assignment{},
			Date:        s.now().Format(time.DateOnly),
		}
	}
	return nil
}

func checkIndex(d *models.Disposition, index int) error {
	if d == nil || index < 0 || index >= len(d.Assignments) {
		return apperr.Invalid("Penerima disposisi tidak ditemukan.")
	}
	return nil
}
