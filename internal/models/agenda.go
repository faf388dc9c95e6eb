package models

import (
	"slices"
	"strings"
)

// DefaultDressCode is used when an agenda item has no dress code.
const DefaultDressCode = "Menyesuaikan"

// Agenda is the activity schedule of one day.
type Agenda struct {
	ID        string       `json:"id" bson:"_id"`
	Date      string       `json:"date" bson:"date"`
	DayDate   string       `json:"dayDate" bson:"dayDate"`
	Items     []AgendaItem `json:"items" bson:"items"`
	SignedBy  string       `json:"signedBy" bson:"signedBy"`
	SignedNIP string       `json:"signedNip" bson:"signedNip"`
	CreatedAt int64        `json:"createdAt" bson:"createdAt"`
	CreatedBy string       `json:"createdBy" bson:"createdBy"`
}

// AgendaItem is a single activity of an agenda.
type AgendaItem struct {
	ID        string `json:"id" bson:"id"`
	Time      string `json:"time" bson:"time"`
	Location  string `json:"location" bson:"location"`
	Event     string `json:"event" bson:"event"`
	DressCode string `json:"dressCode" bson:"dressCode"`
	Remarks   string `json:"remarks" bson:"remarks"`
}

// Clone returns a deep copy of a.
func (a Agenda) Clone() Agenda {
	a.Items = slices.Clone(a.Items)
	return a
}

// Participants splits the newline-delimited remarks into trimmed, non-empty lines.
func (i AgendaItem) Participants() []string {
	var out []string
	for _, line := range strings.Split(i.Remarks, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
