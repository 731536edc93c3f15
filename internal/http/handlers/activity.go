package handlers

import (
	"net/http"
	"strconv"

	httpx "github.com/dropDatabas3/corpsite/internal/http"
	"github.com/dropDatabas3/corpsite/internal/observability/logger"
)

// NewActivityHandler: GET /api/activity?limit=20. El panel muestra las
// últimas acciones del equipo.
func NewActivityHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if s := r.URL.Query().Get("limit"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}
		entries, err := d.Store.RecentActivity(r.Context(), limit)
		if err != nil {
			logger.From(r.Context()).Error("listado de actividad falló", logger.Err(err))
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "error interno", httpx.CodeInternal)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, entries)
	}
}
