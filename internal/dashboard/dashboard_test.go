package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/starford/esurat/internal/models"
)

type fakeSource struct {
	users   []models.User
	letters []models.Letter
}

func (f fakeSource) ListUsers() []models.User     { return f.users }
func (f fakeSource) ListLetters() []models.Letter { return f.letters }

func TestCompute(t *testing.T) {
	now := time.Date(2026, 1, 23, 15, 0, 0, 0, time.UTC)
	today := now.Add(-2 * time.Hour).UnixMilli()
	yesterday := now.Add(-20 * time.Hour).UnixMilli()

	var letters []models.Letter
	for i := 0; i < 4; i++ {
		letters = append(letters, models.Letter{ID: "in" + string(rune('a'+i)), Direction: models.DirectionIncoming, CreatedAt: today})
	}
	for i := 0; i < 3; i++ {
		letters = append(letters, models.Letter{ID: "out" + string(rune('a'+i)), Direction: models.DirectionOutgoing, CreatedAt: yesterday})
	}

	s := Compute(fakeSource{users: make([]models.User, 3), letters: letters}, now)
	assert.Equal(t, 4, s.Incoming)
	assert.Equal(t, 3, s.Outgoing)
	assert.Equal(t, 3, s.Users)
	assert.Equal(t, 4, s.CreatedToday)
	assert.Len(t, s.Recent, RecentLimit)
	assert.Equal(t, "ina", s.Recent[0].ID)
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(fakeSource{}, time.Now())
	assert.Zero(t, s.Incoming)
	assert.NotNil(t, s.Recent)
	assert.Empty(t, s.Recent)
}
