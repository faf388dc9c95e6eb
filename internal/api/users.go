package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/esurat/internal/models"
)

// ListUsers handles GET /api/users.
//
//	@Summary	List accounts (admin only)
//	@Tags		users
//	@Success	200	{array}		models.User
//	@Failure	403	{object}	errResponse
//	@Router		/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	all, err := h.deps.Users.List(actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// CreateUser handles POST /api/users.
//
//	@Summary	Create an account (admin only)
//	@Tags		users
//	@Param		body	body		models.User	true	"Account"
//	@Success	201		{object}	models.User
//	@Failure	409		{object}	errResponse
//	@Router		/users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.User
	if !decode(w, r, &in) {
		return
	}
	u, err := h.deps.Users.Add(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// UpdateUser handles PUT /api/users/{id}.
//
//	@Summary	Update an account (admin only)
//	@Tags		users
//	@Param		body	body		models.User	true	"Account; empty password keeps the current one"
//	@Success	200		{object}	models.User
//	@Router		/users/{id} [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in models.User
	if !decode(w, r, &in) {
		return
	}
	in.ID = chi.URLParam(r, "id")
	u, err := h.deps.Users.Update(r.Context(), actor(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ClearUserPassword handles DELETE /api/users/{id}/password.
//
//	@Summary	Remove an account's password (admin only, local drivers)
//	@Tags		users
//	@Success	200	{object}	models.User
//	@Failure	400	{object}	errResponse
//	@Router		/users/{id}/password [delete]
func (h *Handler) ClearUserPassword(w http.ResponseWriter, r *http.Request) {
	u, err := h.deps.Users.ClearPassword(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// DeleteUser handles DELETE /api/users/{id}.
//
//	@Summary	Delete an account (admin only)
//	@Tags		users
//	@Success	204
//	@Failure	403	{object}	errResponse
//	@Router		/users/{id} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Users.Delete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
