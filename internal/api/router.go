package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/esurat/internal/agenda"
	"github.com/starford/esurat/internal/letters"
	"github.com/starford/esurat/internal/models"
	"github.com/starford/esurat/internal/storage"
	"github.com/starford/esurat/internal/users"
)

// Directory is the read side of the replica the handlers need.
type Directory interface {
	UserFinder
	ListUsers() []models.User
	ListLetters() []models.Letter
}

// Deps wires the router to the application services.
type Deps struct {
	Directory Directory
	Letters   *letters.Service
	Agendas   *agenda.Service
	Users     *users.Service
	Blobs     storage.Blobs
	// Events, if non-nil, is mounted at GET /events.
	Events http.Handler
	// AllowPasswordless accepts an empty password for accounts without one.
	AllowPasswordless bool
	AuthEnabled       bool
	Token             string
	Now               func() time.Time
}

// NewRouter creates the router mounted under /api.
func NewRouter(d Deps) chi.Router {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &Handler{deps: d}

	r := chi.NewRouter()
	r.Use(AuthMiddleware(d.AuthEnabled, d.Token))

	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(Identity(d.Directory))

		r.Get("/me", h.Me)
		r.Get("/dashboard", h.Dashboard)

		r.Route("/letters", func(r chi.Router) {
			r.Get("/", h.ListLetters)
			r.Post("/", h.CreateLetter)
			r.Get("/{id}", h.GetLetter)
			r.Put("/{id}", h.UpdateLetter)
			r.Delete("/{id}", h.DeleteLetter)
			r.Post("/{id}/flags/{flag}", h.ToggleFlag)
			r.Post("/{id}/disposition", h.OpenDisposition)
			r.Put("/{id}/disposition/instruction", h.SetInstruction)
			r.Post("/{id}/disposition/assignments", h.AddRecipient)
			r.Put("/{id}/disposition/assignments/{index}", h.SetAssignmentStatus)
			r.Delete("/{id}/disposition/assignments/{index}", h.RemoveRecipient)
		})
		r.Post("/analysis", h.Analyze)

		r.Route("/agendas", func(r chi.Router) {
			r.Get("/", h.ListAgendas)
			r.Post("/", h.CreateAgenda)
			r.Get("/day-date", h.DayDate)
			r.Get("/{id}", h.GetAgenda)
			r.Put("/{id}", h.UpdateAgenda)
			r.Delete("/{id}", h.DeleteAgenda)
			r.Post("/{id}/items", h.AddAgendaItem)
			r.Put("/{id}/items/{index}", h.EditAgendaItem)
			r.Delete("/{id}/items/{itemID}", h.RemoveAgendaItem)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Put("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
			r.Delete("/{id}/password", h.ClearUserPassword)
		})

		if d.Blobs != nil {
			r.Post("/attachments", h.UploadAttachment)
		}
	})

	if d.Events != nil {
		r.Get("/events", d.Events.ServeHTTP)
	}
	return r
}

// Handler holds API route handlers.
type Handler struct {
	deps Deps
}
