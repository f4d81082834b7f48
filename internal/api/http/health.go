package http

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mind-engage/itembank/internal/ingest"
)

// GET /api/health
func HealthHandler(svc *ingest.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fail := func(err error) {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("health check")
			respondJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "detail": err.Error()})
		}
		if err := svc.Ping(r.Context()); err != nil {
			fail(err)
			return
		}
		exists, rows, err := svc.TableStats(r.Context(), ingest.PrimaryTable)
		if err != nil {
			fail(err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"status":             "ok",
			"db_driver":          string(svc.Driver()),
			"items_table_exists": exists,
			"row_count":          rows,
		})
	}
}
