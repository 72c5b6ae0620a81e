package http

import (
	"net/http"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/pkg/httpx"
)

// handleLogin authenticates an owner, manager or operator and returns a
// tenant-scoped session token.
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil || !role.TenantScoped() {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_role")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	res, err := rt.Login.Login(r.Context(), role, req.Email, req.Password, httpx.IPKeyExtractor(r))
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Token:    res.Token,
		Role:     res.User.Role.String(),
		TenantID: res.TenantID,
		User:     tenantUserView(res.User, res.TenantID),
	})
}

func tenantUserView(u domain.User, tenantID string) userView {
	return userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role.String(),
		TenantID:  tenantID,
		PumpID:    u.PumpID,
		Status:    string(u.Status),
		LastLogin: u.LastLogin,
	}
}

func staffUserView(u domain.StaffUser) userView {
	return userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role.String(),
		Status:    string(u.Status),
		LastLogin: u.LastLogin,
	}
}
