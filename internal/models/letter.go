package models

import "slices"

// Direction tells whether a letter was received or sent.
type Direction string

const (
	DirectionIncoming Direction = "INCOMING"
	DirectionOutgoing Direction = "OUTGOING"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionIncoming || d == DirectionOutgoing
}

// Flag names a reviewer checkbox on a letter.
type Flag string

const (
	FlagCheck1 Flag = "check1"
	FlagCheck2 Flag = "check2"
)

// AssignmentStatus is the progress of one disposition recipient.
// Any status may follow any other.
type AssignmentStatus string

const (
	StatusWaiting    AssignmentStatus = "Menunggu"
	StatusInProgress AssignmentStatus = "Proses"
	StatusDone       AssignmentStatus = "Selesai"
)

// Valid reports whether s is a known status.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Letter is one archived piece of correspondence.
type Letter struct {
	ID              string       `json:"id" bson:"_id"`
	Direction       Direction    `json:"direction" bson:"direction"`
	ReferenceNumber string       `json:"referenceNumber" bson:"referenceNumber"`
	Date            string       `json:"date" bson:"date"`
	Counterpart     string       `json:"counterpart" bson:"counterpart"`
	Subject         string       `json:"subject" bson:"subject"`
	Description     string       `json:"description" bson:"description"`
	Attachments     []string     `json:"attachments" bson:"attachments"`
	CreatedAt       int64        `json:"createdAt" bson:"createdAt"`
	CreatedBy       string       `json:"createdBy" bson:"createdBy"`
	Disposition     *Disposition `json:"disposition,omitempty" bson:"disposition,omitempty"`
	Check1          bool         `json:"check1" bson:"check1"`
	Check2          bool         `json:"check2" bson:"check2"`
}

// Disposition is the internal routing instruction attached to an incoming letter.
type Disposition struct {
	Instruction string       `json:"instruction" bson:"instruction"`
	Assignments []Assignment `json:"assignments" bson:"assignments"`
	Date        string       `json:"date" bson:"date"`
}

// Assignment is one recipient of a disposition.
type Assignment struct {
	Recipient string           `json:"recipient" bson:"recipient"`
	Status    AssignmentStatus `json:"status" bson:"status"`
}

// Clone returns a deep copy of l.
func (l Letter) Clone() Letter {
	l.Attachments = slices.Clone(l.Attachments)
	if l.Disposition != nil {
		d := *l.Disposition
		d.Assignments = slices.Clone(d.Assignments)
		l.Disposition = &d
	}
	return l
}

// Recipients returns the recipient names in order.
func (d *Disposition) Recipients() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.Assignments))
	for i, a := range d.Assignments {
		out[i] = a.Recipient
	}
	return out
}
