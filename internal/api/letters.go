package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/letters"
	"github.com/starford/esurat/internal/models"
)

// ListLetters handles GET /api/letters.
//
//	@Summary		List letters newest first
//	@Tags			letters
//	@Produce		json
//	@Param			direction	query		string	false	"INCOMING or OUTGOING"
//	@Param			q			query		string	false	"Search reference number, subject or counterpart"
//	@Success		200			{object}	LetterListResponse
//	@Router			/letters [get]
func (h *Handler) ListLetters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items := h.deps.Letters.List(letters.Filter{
		Direction: models.Direction(q.Get("direction")),
		Query:     q.Get("q"),
	})
	writeJSON(w, http.StatusOK, LetterListResponse{Letters: items, Total: len(items)})
}

// GetLetter handles GET /api/letters/{id}.
//
//	@Summary	Get one letter
//	@Tags		letters
//	@Produce	json
//	@Success	200	{object}	models.Letter
//	@Failure	404	{object}	errResponse
//	@Router		/letters/{id} [get]
func (h *Handler) GetLetter(w http.ResponseWriter, r *http.Request) {
	l, err := h.deps.Letters.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// CreateLetter handles POST /api/letters.
//
//	@Summary		Record a letter
//	@Tags			letters
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Letter	true	"Letter"
//	@Success		201		{object}	models.Letter
//	@Failure		400		{object}	errResponse
//	@Failure		403		{object}	errResponse
//	@Router			/letters [post]
func (h *Handler) CreateLetter(w http.ResponseWriter, r *http.Request) {
	var in models.Letter
	if !decode(w, r, &in) {
		return
	}
	l, err := h.deps.Letters.Add(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// UpdateLetter handles PUT /api/letters/{id}.
//
//	@Summary		Replace a letter
//	@Tags			letters
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Letter	true	"Letter"
//	@Success		200		{object}	models.Letter
//	@Failure		400		{object}	errResponse
//	@Failure		403		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/letters/{id} [put]
func (h *Handler) UpdateLetter(w http.ResponseWriter, r *http.Request) {
	var in models.Letter
	if !decode(w, r, &in) {
		return
	}
	in.ID = chi.URLParam(r, "id")
	prev, err := h.deps.Letters.Get(in.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	l, err := h.deps.Letters.Update(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.releaseAttachments(l.ID, l.Attachments, prev.Attachments)
	writeJSON(w, http.StatusOK, l)
}

// DeleteLetter handles DELETE /api/letters/{id}.
//
//	@Summary	Delete a letter
//	@Tags		letters
//	@Success	204
//	@Failure	404	{object}	errResponse
//	@Router		/letters/{id} [delete]
func (h *Handler) DeleteLetter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	prev, err := h.deps.Letters.Get(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.deps.Letters.Delete(r.Context(), actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	h.releaseAttachments(id, nil, prev.Attachments)
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFlag handles POST /api/letters/{id}/flags/{flag}.
//
//	@Summary	Flip a reviewer checkbox
//	@Tags		letters
//	@Param		flag	path		string	true	"check1 or check2"
//	@Success	200		{object}	models.Letter
//	@Router		/letters/{id}/flags/{flag} [post]
func (h *Handler) ToggleFlag(w http.ResponseWriter, r *http.Request) {
	l, err := h.deps.Letters.ToggleFlag(r.Context(), actor(r), chi.URLParam(r, "id"), models.Flag(chi.URLParam(r, "flag")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// OpenDisposition handles POST /api/letters/{id}/disposition.
//
//	@Summary	Start a disposition on an incoming letter
//	@Tags		disposition
//	@Success	200	{object}	models.Letter
//	@Router		/letters/{id}/disposition [post]
func (h *Handler) OpenDisposition(w http.ResponseWriter, r *http.Request) {
	l, err := h.deps.Letters.OpenDisposition(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// SetInstruction handles PUT /api/letters/{id}/disposition/instruction.
//
//	@Summary	Set the disposition instruction
//	@Tags		disposition
//	@Param		body	body		InstructionRequest	true	"Instruction"
//	@Success	200		{object}	models.Letter
//	@Router		/letters/{id}/disposition/instruction [put]
func (h *Handler) SetInstruction(w http.ResponseWriter, r *http.Request) {
	var req InstructionRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := h.deps.Letters.SetInstruction(r.Context(), actor(r), chi.URLParam(r, "id"), req.Instruction)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// AddRecipient handles POST /api/letters/{id}/disposition/assignments.
//
//	@Summary	Add a disposition recipient
//	@Tags		disposition
//	@Param		body	body		RecipientRequest	true	"Recipient"
//	@Success	200		{object}	models.Letter
//	@Router		/letters/{id}/disposition/assignments [post]
func (h *Handler) AddRecipient(w http.ResponseWriter, r *http.Request) {
	var req RecipientRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := h.deps.Letters.AddRecipient(r.Context(), actor(r), chi.URLParam(r, "id"), req.Recipient)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// SetAssignmentStatus handles PUT /api/letters/{id}/disposition/assignments/{index}.
//
//	@Summary	Change an assignment's status
//	@Tags		disposition
//	@Param		index	path		int				true	"Assignment position"
//	@Param		body	body		StatusRequest	true	"Status"
//	@Success	200		{object}	models.Letter
//	@Router		/letters/{id}/disposition/assignments/{index} [put]
func (h *Handler) SetAssignmentStatus(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := h.deps.Letters.SetAssignmentStatus(r.Context(), actor(r), chi.URLParam(r, "id"), index, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// RemoveRecipient handles DELETE /api/letters/{id}/disposition/assignments/{index}.
//
//	@Summary	Remove a disposition recipient
//	@Tags		disposition
//	@Param		index	path		int	true	"Assignment position"
//	@Success	200		{object}	models.Letter
//	@Router		/letters/{id}/disposition/assignments/{index} [delete]
func (h *Handler) RemoveRecipient(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	l, err := h.deps.Letters.RemoveRecipient(r.Context(), actor(r), chi.URLParam(r, "id"), index)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// Analyze handles POST /api/analysis.
//
//	@Summary	Prepend an AI summary to a letter description
//	@Tags		letters
//	@Param		body	body		AnalysisRequest	true	"Description"
//	@Success	200		{object}	AnalysisRequest
//	@Failure	400		{object}	errResponse
//	@Router		/analysis [post]
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.deps.Letters.Analyze(r.Context(), req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AnalysisRequest{Description: out})
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, r, apperr.Invalid("Nomor urut tidak valid."))
		return 0, false
	}
	return index, true
}
