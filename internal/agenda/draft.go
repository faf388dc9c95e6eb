package agenda

import (
	"fmt"
	"slices"
	"strings"

	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/models"
)

// Signer is the official who signs an agenda.
type Signer struct {
	Name string
	NIP  string
}

// Draft is an agenda being edited. persisted tells whether saving updates an
// existing record or creates a new one.
type Draft struct {
	agenda    models.Agenda
	persisted bool
}

// NewDraft starts a new agenda for date signed by signer.
func NewDraft(signer Signer, date string) (*Draft, error) {
	d := &Draft{agenda: models.Agenda{
		Items:     []models.AgendaItem{},
		SignedBy:  signer.Name,
		SignedNIP: signer.NIP,
	}}
	if err := d.SetDate(date); err != nil {
		return nil, err
	}
	return d, nil
}

// EditDraft starts editing a stored agenda.
func EditDraft(a models.Agenda) *Draft {
	return &Draft{agenda: a.Clone(), persisted: true}
}

// Persisted reports whether the draft edits a stored agenda.
func (d *Draft) Persisted() bool { return d.persisted }

// Agenda returns a copy of the draft's current state.
func (d *Draft) Agenda() models.Agenda { return d.agenda.Clone() }

// Items returns a copy of the items in display order.
func (d *Draft) Items() []models.AgendaItem { return slices.Clone(d.agenda.Items) }

// SetDate sets the date and derives the day/date heading from it.
func (d *Draft) SetDate(date string) error {
	dayDate, err := DayDateFor(date)
	if err != nil {
		return err
	}
	d.agenda.Date = date
	d.agenda.DayDate = dayDate
	return nil
}

// SetSigner replaces the signing official.
func (d *Draft) SetSigner(s Signer) {
	d.agenda.SignedBy = s.Name
	d.agenda.SignedNIP = s.NIP
}

// AddItem inserts item at position with a fresh id. A negative position or
// one past the end appends.
func (d *Draft) AddItem(item models.AgendaItem, position int) (models.AgendaItem, error) {
	item, err := prepare(item)
	if err != nil {
		return models.AgendaItem{}, err
	}
	if position < 0 || position > len(d.agenda.Items) {
		position = len(d.agenda.Items)
	}
	d.agenda.Items = slices.Insert(d.agenda.Items, position, item)
	return item, nil
}

// EditItem replaces the item at index. The replacement gets a new id so the
// edited entry loses its previous identity; its position is kept.
func (d *Draft) EditItem(index int, item models.AgendaItem) (models.AgendaItem, error) {
	if index < 0 || index >= len(d.agenda.Items) {
		return models.AgendaItem{}, fmt.Errorf("agenda item %d: %w", index, apperr.ErrNotFound)
	}
	item, err := prepare(item)
	if err != nil {
		return models.AgendaItem{}, err
	}
	d.agenda.Items[index] = item
	return item, nil
}

// RemoveItem removes the item with id.
func (d *Draft) RemoveItem(id string) error {
	i := slices.IndexFunc(d.agenda.Items, func(it models.AgendaItem) bool { return it.ID == id })
	if i < 0 {
		return fmt.Errorf("agenda item %s: %w", id, apperr.ErrNotFound)
	}
	d.agenda.Items = slices.Delete(d.agenda.Items, i, i+1)
	return nil
}

func prepare(item models.AgendaItem) (models.AgendaItem, error) {
	item.Event = strings.TrimSpace(item.Event)
	if item.Event == "" {
		return models.AgendaItem{}, apperr.Invalid("Nama kegiatan wajib diisi.")
	}
	if strings.TrimSpace(item.DressCode) == "" {
		item.DressCode = models.DefaultDressCode
	}
	item.ID = models.NewID()
	return item, nil
}
