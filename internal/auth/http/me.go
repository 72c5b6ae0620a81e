package http

import (
	"errors"
	"net/http"

	"github.com/fuelos-in/auth/internal/auth/domain"
	"github.com/fuelos-in/auth/internal/auth/service"
	"github.com/fuelos-in/auth/internal/auth/store"
	"github.com/fuelos-in/auth/pkg/httpx"
)

// handleMe returns the authenticated principal, loaded fresh from the
// store so suspensions and profile edits show up immediately.
func (rt *Router) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpx.UserIDFromCtx(ctx)

	role, err := domain.ParseRole(httpx.RoleFromCtx(ctx))
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token")
		return
	}

	if role.TenantScoped() {
		u, err := rt.Store.TenantUsers().GetByID(ctx, role, userID)
		if err != nil {
			rt.writeServiceError(w, mapLookupErr(err))
			return
		}
		httpx.WriteJSON(w, http.StatusOK, tenantUserView(u, u.TenantID()))
		return
	}

	u, err := rt.Store.Staff().GetByID(ctx, userID)
	if err != nil {
		rt.writeServiceError(w, mapLookupErr(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, staffUserView(u))
}

func mapLookupErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return service.ErrNotFound
	}
	return err
}
