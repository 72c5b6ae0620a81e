package http

import (
	"net/http"

	"github.com/fuelos-in/auth/pkg/httpx"
)

// handleTwoFASetup stages a fresh authenticator secret for the caller
// and returns the enrollment material.
func (rt *Router) handleTwoFASetup(w http.ResponseWriter, r *http.Request) {
	enr, err := rt.MFA.Setup(r.Context(), httpx.UserIDFromCtx(r.Context()))
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, twoFASetupResponse{
		Secret:     enr.Secret,
		OTPAuthURL: enr.OTPAuthURL,
		QR:         enr.QR,
	})
}

// handleTwoFAEnable confirms the staged secret with a live code and
// returns the one-time view of the fresh backup codes.
func (rt *Router) handleTwoFAEnable(w http.ResponseWriter, r *http.Request) {
	var req twoFAEnableRequest
	if err := decode(r, &req); err != nil || req.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	codes, err := rt.MFA.Enable(r.Context(), httpx.UserIDFromCtx(r.Context()), req.Code)
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, twoFAEnableResponse{BackupCodes: codes})
}

// handleTwoFADisable turns the authenticator off. Gated on the account
// password so a lost device is recoverable.
func (rt *Router) handleTwoFADisable(w http.ResponseWriter, r *http.Request) {
	var req twoFADisableRequest
	if err := decode(r, &req); err != nil || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if err := rt.MFA.Disable(r.Context(), httpx.UserIDFromCtx(r.Context()), req.Password); err != nil {
		rt.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (rt *Router) handleTwoFAStatus(w http.ResponseWriter, r *http.Request) {
	st, err := rt.MFA.Status(r.Context(), httpx.UserIDFromCtx(r.Context()))
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, twoFAStatusResponse{
		Enabled:          st.Enabled,
		PendingSetup:     st.PendingSetup,
		BackupCodesCount: st.BackupCodesLeft,
	})
}
