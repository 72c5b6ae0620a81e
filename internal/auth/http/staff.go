package http

import (
	"net/http"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/pkg/httpx"
)

// Company user management endpoints. Listing is open to admins and
// above; mutations are superadmin only, enforced by the route
// middleware.

func (rt *Router) handleListStaff(w http.ResponseWriter, r *http.Request) {
	users, err := rt.StaffMgmt.List(r.Context())
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, staffUserView(u))
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

func (rt *Router) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	var req createStaffRequest
	if err := decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_role")
		return
	}
	if req.Name == "" || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	u, err := rt.StaffMgmt.Create(r.Context(), role, req.Name, req.Email, req.Password)
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, staffUserView(u))
}

func (rt *Router) handleResetStaffPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if err := rt.StaffMgmt.ResetPassword(r.Context(), r.PathValue("id"), req.NewPassword); err != nil {
		rt.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (rt *Router) handleDeleteStaff(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if err := rt.StaffMgmt.Delete(r.Context(), id); err != nil {
		rt.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}
