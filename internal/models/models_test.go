package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLetterCloneIsDeep(t *testing.T) {
	l := Letter{
		Attachments: []string{"a"},
		Disposition: &Disposition{
			Instruction: "Hadiri",
			Assignments: []Assignment{{Recipient: "Sekretaris", Status: StatusWaiting}},
		},
	}
	c := l.Clone()
	c.Attachments[0] = "b"
	c.Disposition.Instruction = "Tindak lanjuti"
	c.Disposition.Assignments[0].Status = StatusDone

	assert.Equal(t, "a", l.Attachments[0])
	assert.Equal(t, "Hadiri", l.Disposition.Instruction)
	assert.Equal(t, StatusWaiting, l.Disposition.Assignments[0].Status)
}

func TestAgendaCloneIsDeep(t *testing.T) {
	a := Agenda{Items: []AgendaItem{{Event: "Apel pagi"}}}
	c := a.Clone()
	c.Items[0].Event = "Rapat"
	assert.Equal(t, "Apel pagi", a.Items[0].Event)
}

func TestParticipants(t *testing.T) {
	item := AgendaItem{Remarks: "  Camat\n\nSekcam \n\t\nKasi Pemerintahan"}
	assert.Equal(t, []string{"Camat", "Sekcam", "Kasi Pemerintahan"}, item.Participants())
	assert.Empty(t, AgendaItem{}.Participants())
}

func TestRecipients(t *testing.T) {
	var d *Disposition
	assert.Nil(t, d.Recipients())

	d = &Disposition{Assignments: []Assignment{{Recipient: "A"}, {Recipient: "B"}}}
	assert.Equal(t, []string{"A", "B"}, d.Recipients())
}

func TestCanManage(t *testing.T) {
	cases := []struct {
		role Role
		in   bool
		out  bool
	}{
		{RoleAdmin, true, true},
		{RoleIncoming, true, false},
		{RoleOutgoing, false, true},
		{Role("TAMU"), false, false},
	}
	for _, tc := range cases {
		u := User{Role: tc.role}
		assert.Equal(t, tc.in, u.CanManage(DirectionIncoming), tc.role)
		assert.Equal(t, tc.out, u.CanManage(DirectionOutgoing), tc.role)
	}
}

func TestPublicDropsPassword(t *testing.T) {
	u := User{Username: "admin", Password: "123"}
	assert.Empty(t, u.Public().Password)
	assert.Equal(t, "123", u.Password)
	assert.True(t, u.IsMainAdmin())
}

func TestNewID(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := NewID()
		assert.Len(t, id, 9)
		assert.Regexp(t, `^[0-9a-z]+$`, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "Administrator", RoleAdmin.Label())
	assert.Equal(t, "Staf Surat Masuk", RoleIncoming.Label())
	assert.Equal(t, "Staf Surat Keluar", RoleOutgoing.Label())
	assert.Equal(t, "tamu", Role("tamu").Label())
}
