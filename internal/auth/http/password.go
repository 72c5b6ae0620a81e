package http

import (
	"net/http"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/pkg/httpx"
)

// handleChangePassword rotates the caller's own password.
func (rt *Router) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	ctx := r.Context()
	role, err := domain.ParseRole(httpx.RoleFromCtx(ctx))
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token")
		return
	}

	if err := rt.Passwords.Change(ctx, role, httpx.UserIDFromCtx(ctx), req.CurrentPassword, req.NewPassword); err != nil {
		rt.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}
