package api

import (
	"net/http"

	"github.com/starford/esurat/internal/dashboard"
	"github.com/starford/esurat/internal/session"
)

// Login handles POST /api/auth/login.
//
//	@Summary		Sign in
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	models.User
//	@Failure		401		{object}	errResponse
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := session.Authenticate(h.deps.Directory.ListUsers(), req.Username, req.Password, h.deps.AllowPasswordless)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Public())
}

// Logout handles POST /api/auth/logout. The browser forgets its user; there is
// no server-side session to end.
//
//	@Summary	Sign out
//	@Tags		auth
//	@Success	204
//	@Router		/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me.
//
//	@Summary	Current user
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	models.User
//	@Failure	401	{object}	errResponse
//	@Router		/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, actor(r).Public())
}

// Dashboard handles GET /api/dashboard.
//
//	@Summary	Landing page summary
//	@Tags		dashboard
//	@Produce	json
//	@Success	200	{object}	dashboard.Stats
//	@Router		/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dashboard.Compute(h.deps.Directory, h.deps.Now()))
}
