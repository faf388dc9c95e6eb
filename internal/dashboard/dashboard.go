// Package dashboard computes the summary shown on the landing page.
package dashboard

import (
	"time"

	"github.com/starford/esurat/internal/models"
)

// RecentLimit is how many recent letters the summary carries.
const RecentLimit = 5

// Source supplies the replicated collections.
type Source interface {
	ListUsers() []models.User
	ListLetters() []models.Letter
}

// Stats is the dashboard summary.
type Stats struct {
	Incoming     int             `json:"incoming"`
	Outgoing     int             `json:"outgoing"`
	Users        int             `json:"users"`
	CreatedToday int             `json:"createdToday"`
	Recent       []models.Letter `json:"recent"`
}

// Compute summarizes src as of now. Letters are expected newest first.
func Compute(src Source, now time.Time) Stats {
	letters := src.ListLetters()
	s := Stats{Users: len(src.ListUsers()), Recent: []models.Letter{}}

	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	for _, l := range letters {
		switch l.Direction {
		case models.DirectionIncoming:
			s.Incoming++
		case models.DirectionOutgoing:
			s.Outgoing++
		}
		created := time.UnixMilli(l.CreatedAt).In(now.Location())
		if !created.Before(start) && created.Before(end) {
			s.CreatedToday++
		}
		if len(s.Recent) < RecentLimit {
			s.Recent = append(s.Recent, l)
		}
	}
	return s
}
