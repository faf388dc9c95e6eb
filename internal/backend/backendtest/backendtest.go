// Package backendtest is the behaviour battery every backend driver must pass.
package backendtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/backend"
	"github.com/starford/esurat/internal/models"
)

// Factory returns a fresh, empty backend for one subtest.
type Factory func(t *testing.T) backend.Backend

// Run executes the full battery against backends produced by newBackend.
func Run(t *testing.T, newBackend Factory) {
	t.Run("UsersRoundTrip", func(t *testing.T) { testUsers(t, newBackend(t)) })
	t.Run("LetterRoundTrip", func(t *testing.T) { testLetterRoundTrip(t, newBackend(t)) })
	t.Run("LetterUpdateReplaces", func(t *testing.T) { testLetterUpdate(t, newBackend(t)) })
	t.Run("DeleteRemovesExactlyOne", func(t *testing.T) { testDeleteOne(t, newBackend(t)) })
	t.Run("MissingRecords", func(t *testing.T) { testMissing(t, newBackend(t)) })
	t.Run("AgendaItemsKeepOrder", func(t *testing.T) { testAgenda(t, newBackend(t)) })
	t.Run("SeedUsers", func(t *testing.T) { testSeed(t, newBackend(t)) })
}

// SampleLetter returns a fully populated incoming letter.
func SampleLetter() models.Letter {
	return models.Letter{
		Direction:       models.DirectionIncoming,
		ReferenceNumber: "005/UND/I/2026",
		Date:            "2026-01-20",
		Counterpart:     "Dinas Pendidikan",
		Subject:         "Undangan Rapat",
		Description:     "Rapat koordinasi awal tahun.",
		Attachments:     []string{"data:application/pdf;base64,JVBERi0xLjQK"},
		CreatedAt:       1768900000000,
		CreatedBy:       "Administrator",
		Disposition: &models.Disposition{
			Instruction: "Hadiri dan laporkan",
			Date:        "2026-01-21",
			Assignments: []models.Assignment{
				{Recipient: "Kasubag Umum", Status: models.StatusWaiting},
				{Recipient: "Bendahara", Status: models.StatusDone},
			},
		},
		Check1: true,
	}
}

func testUsers(t *testing.T, b backend.Backend) {
	ctx := context.Background()
	created, err := b.Users().Create(ctx, models.User{Username: "budi", Name: "Budi", Role: models.RoleIncoming, Password: "rahasia"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	users, err := b.Users().List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, created, users[0])

	created.Name = "Budi Santoso"
	created.Role = models.RoleOutgoing
	require.NoError(t, b.Users().Update(ctx, created))

	users, err = b.Users().List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Budi Santoso", users[0].Name)
	assert.Equal(t, models.RoleOutgoing, users[0].Role)
}

func testLetterRoundTrip(t *testing.T, b backend.Backend) {
	ctx := context.Background()
	in := SampleLetter()
	created, err := b.Letters().Create(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	letters, err := b.Letters().List(ctx)
	require.NoError(t, err)
	require.Len(t, letters, 1)

	want := in.Clone()
	want.ID = created.ID
	assert.Equal(t, want, letters[0])
}

func testLetterUpdate(t *testing.T, b backend.Backend) {
	ctx := context.Background()
	created, err := b.Letters().Create(ctx, SampleLetter())
	require.NoError(t, err)

	created.Subject = "Undangan Rapat (revisi)"
	created.Disposition.Assignments[0].Status = models.StatusInProgress
	created.Check2 = true
	require.NoError(t, b.Letters().Update(ctx, created))

	letters, err := b.Letters().List(ctx)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, created, letters[0])

	created.Disposition = nil
	require.NoError(t, b.Letters().Update(ctx, created))
	letters, err = b.Letters().List(ctx)
	require.NoError(t, err)
	assert.Nil(t, letters[0].Disposition)
}

func testDeleteOne(t *testing.T, b backend.Backend) {
	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		l := SampleLetter()
		l.CreatedAt += int64(i)
		created, err := b.Letters().Create(ctx, l)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	require.NoError(t, b.Letters().Delete(ctx, ids[1]))

	letters, err := b.Letters().List(ctx)
	require.NoError(t, err)
	require.Len(t, letters, 2)
	got := []string{letters[0].ID, letters[1].ID}
	assert.ElementsMatch(t, []string{ids[0], ids[2]}, got)
}

func testMissing(t *testing.T, b backend.Backend) {
	ctx := context.Background()
	l := SampleLetter()
	l.ID = "does-not-exist"
	assert.ErrorIs(t, b.Letters().Update(ctx, l), apperr.ErrNotFound)
	assert.ErrorIs(t, b.Letters().Delete(ctx, "does-not-exist"), apperr.ErrNotFound)
	assert.ErrorIs(t, b.Users().Delete(ctx, "does-not-exist"), apperr.ErrNotFound)
	assert.ErrorIs(t, b.Agendas().Delete(ctx, "does-not-exist"), apperr.ErrNotFound)
}

func testAgenda(t *testing.T, b backend.Backend) {
	ctx := context.Background()
	in := models.Agenda{
		Date:    "2026-01-23",
		DayDate: "Jum'at/ 23 Januari 2026",
		Items: []models.AgendaItem{
			{ID: "a1", Time: "08.00", Location: "Aula", Event: "Apel Pagi", DressCode: models.DefaultDressCode, Remarks: "Kepala\nStaf"},
			{ID: "a2", Time: "10.00", Location: "Ruang Rapat", Event: "Rapat", DressCode: "PDH"},
		},
		SignedBy:  "Novi Haryanto, S. Adm",
		SignedNIP: "197111201991031003",
		CreatedAt: 1769130000000,
		CreatedBy: "Administrator",
	}
	created, err := b.Agendas().Create(ctx, in)
	require.NoError(t, err)

	agendas, err := b.Agendas().List(ctx)
	require.NoError(t, err)
	require.Len(t, agendas, 1)
	in.ID = created.ID
	assert.Equal(t, in, agendas[0])

	in.Items = []models.AgendaItem{in.Items[1], in.Items[0]}
	require.NoError(t, b.Agendas().Update(ctx, in))
	agendas, err = b.Agendas().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a2", agendas[0].Items[0].ID)
	assert.Equal(t, "a1", agendas[0].Items[1].ID)
}

func testSeed(t *testing.T, b backend.Backend) {
	seed := b.SeedUsers()
	require.NotEmpty(t, seed)
	assert.Equal(t, models.AdminUsername, seed[0].Username)
	assert.Equal(t, models.RoleAdmin, seed[0].Role)
	for _, u := range seed {
		assert.Empty(t, u.ID, "seed accounts get their id from the backend")
	}
}
