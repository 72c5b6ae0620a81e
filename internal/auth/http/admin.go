package http

import (
	"net/http"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/pkg/httpx"
)

// handleAdminLogin runs the first staff login step: check the password,
// then either issue a one-time numeric code or signal that an
// authenticator code is expected.
func (rt *Router) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil || !role.Staff() {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_role")
		return
	}
	if req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	res, err := rt.Challenges.Begin(r.Context(), role, req.Email, req.Password, httpx.IPKeyExtractor(r))
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}

	resp := adminLoginResponse{TwoFA: res.TwoFA}
	if !res.TwoFA {
		resp.ExpiresAt = &res.ExpiresAt
	}
	if rt.ExposeChallengeCode && res.Code != "" {
		httpx.WriteJSON(w, http.StatusOK, struct {
			adminLoginResponse
			Code string `json:"code"`
		}{resp, res.Code})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// handleAdminVerify redeems the second factor for a staff session token.
func (rt *Router) handleAdminVerify(w http.ResponseWriter, r *http.Request) {
	var req adminVerifyRequest
	if err := decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil || !role.Staff() {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_role")
		return
	}
	if req.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	res, err := rt.Challenges.Verify(r.Context(), role, req.Email, req.Code, httpx.IPKeyExtractor(r))
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Token: res.Token,
		Role:  res.User.Role.String(),
		User:  staffUserView(res.User),
	})
}
