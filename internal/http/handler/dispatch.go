package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"nudge/internal/auth"
	"nudge/internal/reminder"
)

type DispatchHandler struct {
	Dispatcher   *reminder.Dispatcher
	DefaultLimit int
}

// Dispatch runs one cycle for the caller's tenant. The tenant always
// comes from the verified token, never from the request, so one tenant
// cannot trigger another's queue.
func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok || id.TenantID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	limit := h.DefaultLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	res, err := h.Dispatcher.Dispatch(r.Context(), id.TenantID, limit)
	if err != nil {
		if errors.Is(err, reminder.ErrNotInstalled) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotImplemented)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "reminders module not installed"})
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}
