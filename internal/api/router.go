package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tsakani-green/envkeep/internal/keeper"
	"github.com/tsakani-green/envkeep/internal/sse"
	"github.com/tsakani-green/envkeep/internal/store"
)

// Server holds dependencies for all HTTP handlers.
type Server struct {
	keeper      *keeper.Keeper
	store       store.Store
	broadcaster *sse.Broadcaster

	// preflight defaults, set from config
	dockerfile string
	contextDir string
}

// Options configures the router beyond its required dependencies.
type Options struct {
	MasterKey  string
	Dockerfile string
	ContextDir string
}

// NewRouter creates a Chi router with all routes wired. Mutating routes
// require the master key when one is set.
func NewRouter(k *keeper.Keeper, st store.Store, b *sse.Broadcaster, opts Options) *chi.Mux {
	srv := &Server{
		keeper:      k,
		store:       st,
		broadcaster: b,
		dockerfile:  opts.Dockerfile,
		contextDir:  opts.ContextDir,
	}

	r := chi.NewRouter()
	r.Use(RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", srv.Health)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Read-only views of the managed file
		r.Get("/env", srv.GetEnv)
		r.Get("/env/validate", srv.Validate)
		r.Get("/env/scan", srv.Scan)
		r.Get("/env/diff", srv.Diff)
		r.Get("/preflight", srv.Preflight)
		r.Get("/history", srv.History)
		r.Get("/backups", srv.ListBackups)

		// SSE stream
		r.Get("/stream", srv.Stream)

		// Mutations
		r.Group(func(r chi.Router) {
			r.Use(RequireMasterKey(opts.MasterKey))
			r.Post("/env/update", srv.Update)
			r.Post("/backups", srv.CreateBackup)
			r.Post("/backups/{name}/restore", srv.RestoreBackup)
		})
	})

	return r
}

// Health reports liveness.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
