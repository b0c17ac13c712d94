package app

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/danh0999/Hokori-Learning-sub002/internal/app/observability"
	"github.com/danh0999/Hokori-Learning-sub002/internal/bulkimport"
	"github.com/danh0999/Hokori-Learning-sub002/internal/draft"
	"github.com/danh0999/Hokori-Learning-sub002/internal/i18n"
)

// NewRouter wires the import API. dbConn is only used for pool metrics and
// may be nil.
func NewRouter(cfg Config, store draft.Store, dbConn *sql.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept-Language", "Content-Type", csrfHeaderName},
		ExposedHeaders:   []string{"Content-Disposition", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	collector := observability.NewCollector(dbConn)
	r.Use(collector.Middleware)

	defaultLang := cfg.DefaultLang
	if defaultLang == "" {
		defaultLang = i18n.DefaultLang
	}
	catalog := i18n.MustNewCatalog(defaultLang)

	importSvc := bulkimport.NewService(store, catalog, collector)
	importHandler := bulkimport.NewHandler(importSvc, cfg.MaxUploadBytes())
	uploadLimiter := NewIPRateLimiter(cfg.ImportRateLimit, time.Minute)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/metrics", collector.MetricsHandler)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(CSRFMiddleware(cfg.CSRFEnforced))

		api.Get("/quiz-imports/template", importHandler.Template)
		api.With(RateLimitMiddleware(uploadLimiter)).Post("/quiz-imports", importHandler.Import)
		api.Get("/quiz-imports/{importID}/drafts", importHandler.ListDrafts)
		api.Get("/quiz-imports/{importID}/drafts/{rowNo}", importHandler.GetDraft)
		api.Put("/quiz-imports/{importID}/drafts/{rowNo}", importHandler.FixDraft)
		api.Delete("/quiz-imports/{importID}/drafts/{rowNo}", importHandler.DiscardDraft)
		api.Post("/quiz-drafts/validate", importHandler.ValidateDraft)
	})

	return r
}
