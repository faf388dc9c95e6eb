package letters

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/esurat/internal/analysis"
	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/backend/memory"
	"github.com/starford/esurat/internal/models"
	"github.com/starford/esurat/internal/replica"
)

var (
	admin    = models.User{ID: "u1", Username: "admin", Name: "Administrator", Role: models.RoleAdmin}
	inStaff  = models.User{ID: "u2", Username: "masuk", Name: "Staf Surat Masuk", Role: models.RoleIncoming}
	outStaff = models.User{ID: "u3", Username: "keluar", Name: "Staf Surat Keluar", Role: models.RoleOutgoing}

	fixedNow = time.Date(2026, 1, 23, 9, 30, 0, 0, time.UTC)
)

type stubAnalyzer struct {
	res *analysis.Result
	err error
}

func (s stubAnalyzer) Analyze(context.Context, string) (*analysis.Result, error) { return s.res, s.err }

func newService(t *testing.T, opts ...Option) (*Service, *replica.Replica) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	r := replica.New(memory.New(), logger)
	require.NoError(t, r.Start(context.Background()))
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(r, logger, opts...), r
}

func incoming() models.Letter {
	return models.Letter{
		Direction:       models.DirectionIncoming,
		ReferenceNumber: "005/UND/2026",
		Date:            "2026-01-20",
		Counterpart:     "Dinas Pendidikan",
		Subject:         "Undangan Rapat",
	}
}

func TestAddSetsCreationMetadata(t *testing.T) {
	svc, _ := newService(t)
	l, err := svc.Add(context.Background(), inStaff, incoming())
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, fixedNow.UnixMilli(), l.CreatedAt)
	assert.Equal(t, "Staf Surat Masuk", l.CreatedBy)
}

func TestAddRequiresFields(t *testing.T) {
	svc, r := newService(t)
	in := incoming()
	in.Subject = ""
	_, err := svc.Add(context.Background(), admin, in)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Perihal surat wajib diisi.", apperr.Message(err))

	in = incoming()
	in.Date = "23/01/2026"
	_, err = svc.Add(context.Background(), admin, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	in = incoming()
	in.Disposition = &models.Disposition{Assignments: []models.Assignment{{Recipient: "Sekretaris", Status: "Ditunda"}}}
	_, err = svc.Add(context.Background(), admin, in)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Status disposisi tidak valid.", apperr.Message(err))
	assert.Empty(t, r.ListLetters())
}

func TestAddRoleGate(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Add(context.Background(), outStaff, incoming())
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	out := incoming()
	out.Direction = models.DirectionOutgoing
	_, err = svc.Add(context.Background(), outStaff, out)
	assert.NoError(t, err)
}

func TestAddRejectsUnsupportedAttachment(t *testing.T) {
	svc, _ := newService(t)
	in := incoming()
	in.Attachments = []string{"data:text/plain;base64,aGVsbG8="}
	_, err := svc.Add(context.Background(), admin, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateKeepsDirectionAndCreator(t *testing.T) {
	svc, _ := newService(t)
	l, err := svc.Add(context.Background(), admin, incoming())
	require.NoError(t, err)

	edit := l
	edit.Direction = models.DirectionOutgoing
	edit.CreatedBy = "someone else"
	edit.CreatedAt = 1
	edit.Subject = "Undangan Rapat Revisi"
	got, err := svc.Update(context.Background(), admin, edit)
	require.NoError(t, err)
	assert.Equal(t, models.DirectionIncoming, got.Direction)
	assert.Equal(t, "Administrator", got.CreatedBy)
	assert.Equal(t, l.CreatedAt, got.CreatedAt)

	stored, err := svc.Get(l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Undangan Rapat Revisi", stored.Subject)
	assert.Equal(t, models.DirectionIncoming, stored.Direction)
}

func TestToggleFlagChangesOnlyThatFlag(t *testing.T) {
	svc, _ := newService(t)
	l, err := svc.Add(context.Background(), admin, incoming())
	require.NoError(t, err)

	got, err := svc.ToggleFlag(context.Background(), admin, l.ID, models.FlagCheck1)
	require.NoError(t, err)
	assert.True(t, got.Check1)
	assert.False(t, got.Check2)

	want := l
	want.Check1 = true
	assert.Equal(t, want, got)

	got, err = svc.ToggleFlag(context.Background(), admin, l.ID, models.FlagCheck1)
	require.NoError(t, err)
	assert.False(t, got.Check1)
}

func TestDeleteRemovesOnlyOne(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	a, _ := svc.Add(ctx, admin, incoming())
	b, _ := svc.Add(ctx, admin, incoming())

	require.NoError(t, svc.Delete(ctx, admin, a.ID))
	list := svc.List(Filter{})
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	assert.ErrorIs(t, svc.Delete(ctx, admin, a.ID), apperr.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, _ = svc.Add(ctx, admin, incoming())
	out := incoming()
	out.Direction = models.DirectionOutgoing
	out.Subject = "Laporan Keuangan"
	out.Counterpart = "Bupati"
	_, _ = svc.Add(ctx, admin, out)

	assert.Len(t, svc.List(Filter{Direction: models.DirectionIncoming}), 1)
	assert.Len(t, svc.List(Filter{Query: "keuangan"}), 1)
	assert.Len(t, svc.List(Filter{Query: "BUPATI"}), 1)
	assert.Len(t, svc.List(Filter{Query: "2026"}), 2)
	assert.Empty(t, svc.List(Filter{Direction: models.DirectionIncoming, Query: "bupati"}))
}

func TestDispositionWorkflow(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	l, err := svc.Add(ctx, inStaff, incoming())
	require.NoError(t, err)

	l, err = svc.OpenDisposition(ctx, inStaff, l.ID)
	require.NoError(t, err)
	require.NotNil(t, l.Disposition)
	assert.Equal(t, "2026-01-23", l.Disposition.Date)
	assert.Empty(t, l.Disposition.Assignments)

	_, err = svc.AddRecipient(ctx, inStaff, l.ID, "Kasubag Umum")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	for _, name := range []string{"Kasubag Umum", "  ", "Bendahara", "Sekretaris"} {
		l, err = svc.AddRecipient(ctx, admin, l.ID, name)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"Kasubag Umum", "Bendahara", "Sekretaris"}, l.Disposition.Recipients())
	for _, a := range l.Disposition.Assignments {
		assert.Equal(t, models.StatusWaiting, a.Status)
	}

	l, err = svc.RemoveRecipient(ctx, admin, l.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kasubag Umum", "Sekretaris"}, l.Disposition.Recipients())

	_, err = svc.SetInstruction(ctx, outStaff, l.ID, "x")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	l, err = svc.SetInstruction(ctx, admin, l.ID, "Hadiri")
	require.NoError(t, err)
	assert.Equal(t, "Hadiri", l.Disposition.Instruction)

	// Any role moves statuses in any direction.
	l, err = svc.SetAssignmentStatus(ctx, outStaff, l.ID, 0, models.StatusDone)
	require.NoError(t, err)
	l, err = svc.SetAssignmentStatus(ctx, inStaff, l.ID, 0, models.StatusWaiting)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, l.Disposition.Assignments[0].Status)

	_, err = svc.SetAssignmentStatus(ctx, admin, l.ID, 5, models.StatusDone)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.SetAssignmentStatus(ctx, admin, l.ID, 0, "Batal")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDispositionOnlyForIncoming(t *testing.T) {
	svc, _ := newService(t)
	out := incoming()
	out.Direction = models.DirectionOutgoing
	l, err := svc.Add(context.Background(), admin, out)
	require.NoError(t, err)

	_, err = svc.OpenDisposition(context.Background(), admin, l.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateBlocksRoutingChangesByStaff(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	l, _ := svc.Add(ctx, admin, incoming())
	l, _ = svc.AddRecipient(ctx, admin, l.ID, "Kasubag Umum")

	edit := l.Clone()
	edit.Disposition.Assignments[0].Status = models.StatusInProgress
	_, err := svc.Update(ctx, inStaff, edit)
	require.NoError(t, err, "status changes are open to staff")

	edit = l.Clone()
	edit.Disposition.Assignments = append(edit.Disposition.Assignments, models.Assignment{Recipient: "Bendahara", Status: models.StatusWaiting})
	_, err = svc.Update(ctx, inStaff, edit)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	edit = l.Clone()
	edit.Disposition.Instruction = "changed"
	_, err = svc.Update(ctx, inStaff, edit)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAnalyze(t *testing.T) {
	res := &analysis.Result{Summary: "Undangan rapat", Category: "Undangan", Priority: "Tinggi"}
	svc, _ := newService(t, WithAnalyzer(stubAnalyzer{res: res}))
	ctx := context.Background()

	_, err := svc.Analyze(ctx, "  ")
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Harap isi deskripsi surat untuk dianalisis.", apperr.Message(err))

	got, err := svc.Analyze(ctx, "Mohon hadir.")
	require.NoError(t, err)
	assert.Equal(t, "Analisis AI:\nRingkasan: Undangan rapat\nKategori: Undangan\nPrioritas: Tinggi\n\nMohon hadir.", got)

	again, err := svc.Analyze(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, got, again, "a second analysis replaces the first block")
}

func TestAnalyzeReplacesMultiParagraphBlock(t *testing.T) {
	ctx := context.Background()
	first := &analysis.Result{Summary: "Undangan rapat.\n\nHadir pukul 9.", Category: "Undangan", Priority: "Tinggi"}
	svc, _ := newService(t, WithAnalyzer(stubAnalyzer{res: first}))
	got, err := svc.Analyze(ctx, "Mohon hadir.")
	require.NoError(t, err)
	assert.Equal(t, "Analisis AI:\nRingkasan: Undangan rapat. Hadir pukul 9.\nKategori: Undangan\nPrioritas: Tinggi\n\nMohon hadir.", got)

	second := &analysis.Result{Summary: "Rapat koordinasi", Category: "Rapat", Priority: "Sedang"}
	svc, _ = newService(t, WithAnalyzer(stubAnalyzer{res: second}))
	again, err := svc.Analyze(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "Analisis AI:\nRingkasan: Rapat koordinasi\nKategori: Rapat\nPrioritas: Sedang\n\nMohon hadir.", again)
}

func TestStripAnalysisSpanningBlock(t *testing.T) {
	stored := "Analisis AI:\nRingkasan: Undangan rapat.\n\nHadir pukul 9.\nKategori: Undangan\nPrioritas: Tinggi\n\nMohon hadir.\n\nTerima kasih."
	assert.Equal(t, "Mohon hadir.\n\nTerima kasih.", stripAnalysis(stored))
	assert.Equal(t, "Analisis AI: catatan", stripAnalysis("Analisis AI: catatan"))
}

func TestAnalyzeFailureLeavesDescription(t *testing.T) {
	svc, _ := newService(t, WithAnalyzer(stubAnalyzer{err: errors.New("quota")}))
	got, err := svc.Analyze(context.Background(), "Isi surat")
	require.NoError(t, err)
	assert.Equal(t, "Isi surat", got)

	svc, _ = newService(t)
	got, err = svc.Analyze(context.Background(), "Isi surat")
	require.NoError(t, err)
	assert.Equal(t, "Isi surat", got)
}
