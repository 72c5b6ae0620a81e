package http

import (
	"net/http"

	"github.com/fuelos-in/auth/pkg/httpx"
)

func (rt *Router) handleLivez(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (rt *Router) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := rt.Store.Ping(r.Context()); err != nil {
		httpx.WriteError(w, http.StatusServiceUnavailable, "store_unavailable")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}
