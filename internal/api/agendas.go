package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/esurat/internal/agenda"
	"github.com/starford/esurat/internal/apperr"
)

// ListAgendas handles GET /api/agendas.
//
//	@Summary	List agendas newest first
//	@Tags		agendas
//	@Produce	json
//	@Success	200	{array}	models.Agenda
//	@Router		/agendas [get]
func (h *Handler) ListAgendas(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Agendas.List())
}

// GetAgenda handles GET /api/agendas/{id}.
//
//	@Summary	Get one agenda
//	@Tags		agendas
//	@Success	200	{object}	models.Agenda
//	@Failure	404	{object}	errResponse
//	@Router		/agendas/{id} [get]
func (h *Handler) GetAgenda(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.Agendas.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// DayDate handles GET /api/agendas/day-date.
//
//	@Summary	Format a date as an Indonesian agenda heading
//	@Tags		agendas
//	@Param		date	query		string	true	"YYYY-MM-DD"
//	@Success	200		{object}	DayDateResponse
//	@Failure	400		{object}	errResponse
//	@Router		/agendas/day-date [get]
func (h *Handler) DayDate(w http.ResponseWriter, r *http.Request) {
	s, err := agenda.DayDateFor(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DayDateResponse{DayDate: s})
}

// CreateAgenda handles POST /api/agendas.
//
//	@Summary		Create an agenda
//	@Tags			agendas
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AgendaRequest	true	"Agenda"
//	@Success		201		{object}	models.Agenda
//	@Failure		400		{object}	errResponse
//	@Router			/agendas [post]
func (h *Handler) CreateAgenda(w http.ResponseWriter, r *http.Request) {
	var req AgendaRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.deps.Agendas.New(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req.applySigner(d)
	for _, item := range req.Items {
		if _, err := d.AddItem(item, -1); err != nil {
			writeError(w, r, err)
			return
		}
	}
	a, err := h.deps.Agendas.Save(r.Context(), actor(r), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// UpdateAgenda handles PUT /api/agendas/{id}. It changes the date and signer;
// items are edited through the item routes.
//
//	@Summary		Update an agenda's date and signer
//	@Tags			agendas
//	@Param			body	body		AgendaRequest	true	"Agenda"
//	@Success		200		{object}	models.Agenda
//	@Router			/agendas/{id} [put]
func (h *Handler) UpdateAgenda(w http.ResponseWriter, r *http.Request) {
	var req AgendaRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.deps.Agendas.Edit(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Date != "" {
		if err := d.SetDate(req.Date); err != nil {
			writeError(w, r, err)
			return
		}
	}
	req.applySigner(d)
	a, err := h.deps.Agendas.Save(r.Context(), actor(r), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// DeleteAgenda handles DELETE /api/agendas/{id}.
//
//	@Summary	Delete an agenda
//	@Tags		agendas
//	@Success	204
//	@Router		/agendas/{id} [delete]
func (h *Handler) DeleteAgenda(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Agendas.Delete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddAgendaItem handles POST /api/agendas/{id}/items.
//
//	@Summary	Insert an agenda item
//	@Tags		agendas
//	@Param		body	body		AgendaItemRequest	true	"Item and optional position"
//	@Success	200		{object}	models.Agenda
//	@Router		/agendas/{id}/items [post]
func (h *Handler) AddAgendaItem(w http.ResponseWriter, r *http.Request) {
	var req AgendaItemRequest
	if !decode(w, r, &req) {
		return
	}
	pos := -1
	if req.Position != nil {
		pos = *req.Position
	}
	a, err := h.deps.Agendas.AddItem(r.Context(), actor(r), chi.URLParam(r, "id"), req.AgendaItem, pos)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// EditAgendaItem handles PUT /api/agendas/{id}/items/{index}.
//
//	@Summary	Replace an agenda item
//	@Tags		agendas
//	@Param		index	path		int					true	"Item position"
//	@Param		body	body		AgendaItemRequest	true	"Item"
//	@Success	200		{object}	models.Agenda
//	@Router		/agendas/{id}/items/{index} [put]
func (h *Handler) EditAgendaItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, r, apperr.Invalid("Nomor urut tidak valid."))
		return
	}
	var req AgendaItemRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.deps.Agendas.EditItem(r.Context(), actor(r), chi.URLParam(r, "id"), index, req.AgendaItem)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// RemoveAgendaItem handles DELETE /api/agendas/{id}/items/{itemID}.
//
//	@Summary	Remove an agenda item
//	@Tags		agendas
//	@Success	200	{object}	models.Agenda
//	@Router		/agendas/{id}/items/{itemID} [delete]
func (h *Handler) RemoveAgendaItem(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.Agendas.RemoveItem(r.Context(), actor(r), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
