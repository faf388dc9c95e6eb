package postgres

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/esurat/internal/models"
)

func TestDispositionUsesSnakeCaseAndRoundTrips(t *testing.T) {
	d := &models.Disposition{
		Instruction: "Segera tindak lanjuti",
		Date:        "2026-01-21",
		Assignments: []models.Assignment{{Recipient: "Sekretaris", Status: models.StatusInProgress}},
	}
	raw, err := encodeDisposition(d)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Contains(t, generic, "assignments")

	back, err := decodeDisposition(raw)
	require.NoError(t, err)
	assert.Equal(t, d, back)
}

func TestNilDispositionIsNull(t *testing.T) {
	raw, err := encodeDisposition(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	d, err := decodeDisposition(nil)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestItemsDressCodeColumn(t *testing.T) {
	items := []models.AgendaItem{{ID: "x1", Time: "09.00", Event: "Rapat", DressCode: "PDH", Remarks: "A\nB"}}
	raw, err := encodeItems(items)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"dress_code":"PDH"`)

	back, err := decodeItems(raw)
	require.NoError(t, err)
	assert.Equal(t, items, back)
}

func TestAttachmentsNeverNullInColumn(t *testing.T) {
	raw, err := encodeAttachments(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	list, err := decodeAttachments(raw)
	require.NoError(t, err)
	assert.Nil(t, list)
}

func TestMigrationURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@db:5432/esurat?sslmode=disable":   "pgx5://u:p@db:5432/esurat?sslmode=disable",
		"postgresql://u:p@db:5432/esurat?sslmode=disable": "pgx5://u:p@db:5432/esurat?sslmode=disable",
		"pgx5://u@db/esurat":                              "pgx5://u@db/esurat",
	}
	for in, want := range cases {
		got, err := migrationURL(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := migrationURL("host=db user=u")
	assert.Error(t, err)
}
