package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// RegisterRoutes mounts the read-only introspection API under /admin,
// guarded by AuthMiddleware.
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	r := chi.NewRouter()
	r.Use(AuthMiddleware)

	r.Get("/stats", h.handleStats)
	r.Get("/databases", h.handleListDatabases)
	r.Get("/datasources", h.handleDataSources)
	r.Get("/cachepools", h.handleCachePools)
	r.Get("/principals", h.handlePrincipals)
	r.Get("/deletelog", h.handleDeleteLog)
	r.Get("/topiclog", h.handleTopicLog)
	r.Get("/loader/queue", h.handleLoaderQueue)
	r.Get("/gate", h.handleGate)
	r.Get("/object", h.handleGetObject)

	mux.Handle("/admin", http.RedirectHandler("/admin/", http.StatusMovedPermanently))
	mux.Handle("/admin/", http.StripPrefix("/admin", r))

	log.Info().Msg("admin introspection endpoints enabled at /admin/*")
}
