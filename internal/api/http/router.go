package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/mind-engage/itembank/internal/ingest"
	"github.com/mind-engage/itembank/internal/item"
	"github.com/mind-engage/itembank/internal/logging"
	"github.com/mind-engage/itembank/internal/storage"
)

// Deps is everything the router hands to its handlers.
type Deps struct {
	Ingest  *ingest.Service
	Items   item.Store
	Sources storage.SourceStore
	Logger  zerolog.Logger

	Defaults    IngestDefaults
	CORSOrigins []string
	Timeout     time.Duration
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.RequestLogger(d.Logger), middleware.Recoverer)
	if d.Timeout > 0 {
		r.Use(middleware.Timeout(d.Timeout))
	}

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	// ingestion and schema maintenance
	r.Post("/ingest", IngestHandler(d.Ingest, d.Sources, d.Defaults))
	r.Get("/ingest", IngestHandler(d.Ingest, d.Sources, d.Defaults))
	r.Post("/ingest/upload", IngestUploadHandler(d.Ingest, d.Sources, d.Defaults))
	r.Get("/rename_q", RenameHandler(d.Ingest))
	r.Get("/columns", ColumnsHandler(d.Ingest))
	r.Get("/tables", TablesHandler(d.Ingest))

	r.Route("/api", func(ar chi.Router) {
		ar.Get("/items", ListItemsHandler(d.Items))
		ar.Get("/items/{id}", GetItemHandler(d.Items))
		ar.Get("/filters", FiltersHandler(d.Items))
		ar.Get("/health", HealthHandler(d.Ingest))
	})
	r.Get("/health", HealthHandler(d.Ingest))

	return r
}
