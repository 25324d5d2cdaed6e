package admin

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/catalogd/catalogd/catalog"
	"github.com/catalogd/catalogd/gate"
	"github.com/catalogd/catalogd/loader"
)

// Handlers serves the read-only JSON introspection surface: registry
// contents, delete log, topic update log, and loader/gate queue depths.
type Handlers struct {
	cat *catalog.Catalog
	ld  *loader.Loader
	gt  *gate.Gate
}

// NewHandlers constructs the admin handler set. ld and gt may be nil in
// tests that only exercise registry introspection.
func NewHandlers(cat *catalog.Catalog, ld *loader.Loader, gt *gate.Gate) *Handlers {
	return &Handlers{cat: cat, ld: ld, gt: gt}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": data}); err != nil {
		log.Error().Err(err).Msg("admin: failed to encode json response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"error": message}); err != nil {
		log.Error().Err(err).Msg("admin: failed to encode error response")
	}
}

// handleStats reports cursor and log-size point-in-time state
// (spec.md Data Model "Cursors").
func (h *Handlers) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.cat.Stats()
	byKind := make(map[string]int, len(stats.ObjectsByKind))
	for kind, count := range stats.ObjectsByKind {
		byKind[kind.String()] = count
	}

	resp := map[string]interface{}{
		"service_id":           h.cat.ServiceID(),
		"current_version":      stats.CurrentVersion,
		"last_published_topic": stats.LastPublishedTopic,
		"delete_log_size":      stats.DeleteLogSize,
		"topic_update_log_size": stats.TopicUpdateLogSize,
		"objects_by_kind":      byKind,
	}
	if h.ld != nil {
		resp["load_queue_depth"] = h.ld.QueueDepth()
	}
	if h.gt != nil {
		resp["gate_queue_depth"] = h.gt.QueueDepth()
		resp["gate_permits"] = h.gt.Permits()
	}
	writeJSON(w, resp)
}

// handleListDatabases lists every database, each with its owned tables,
// views and functions (spec.md §9 "strict ownership").
func (h *Handlers) handleListDatabases(w http.ResponseWriter, r *http.Request) {
	dbs := h.cat.AllDatabases()
	out := make([]map[string]interface{}, 0, len(dbs))
	for _, db := range dbs {
		name := db.Key.Name
		out = append(out, map[string]interface{}{
			"database":  db,
			"tables":    h.cat.TablesOf(name),
			"views":     h.cat.ViewsOf(name),
			"functions": h.cat.FunctionsOf(name),
		})
	}
	writeJSON(w, out)
}

func (h *Handlers) handleDataSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.cat.AllDataSources())
}

func (h *Handlers) handleCachePools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.cat.AllCachePools())
}

func (h *Handlers) handlePrincipals(w http.ResponseWriter, r *http.Request) {
	principals := h.cat.AllPrincipals()
	out := make([]map[string]interface{}, 0, len(principals))
	for _, p := range principals {
		out = append(out, map[string]interface{}{
			"principal":  p,
			"privileges": h.cat.PrivilegesOf(p.Key.Name),
		})
	}
	writeJSON(w, out)
}

// handleDeleteLog reports the Delete Log (C) (spec.md Data Model).
func (h *Handlers) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.cat.DeleteLogEntries())
}

// handleTopicLog reports the Topic Update Log (D), including per-key skip
// counters (spec.md I5 starvation avoidance).
func (h *Handlers) handleTopicLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.cat.TopicLogEntries())
}

// handleLoaderQueue reports the Table Loader's pending request count
// (spec.md §4.9).
func (h *Handlers) handleLoaderQueue(w http.ResponseWriter, r *http.Request) {
	if h.ld == nil {
		writeError(w, http.StatusServiceUnavailable, "loader not configured")
		return
	}
	writeJSON(w, map[string]int{"queue_depth": h.ld.QueueDepth()})
}

// handleGate reports the Partial Fetch Gate's admission state (spec.md §4.8).
func (h *Handlers) handleGate(w http.ResponseWriter, r *http.Request) {
	if h.gt == nil {
		writeError(w, http.StatusServiceUnavailable, "gate not configured")
		return
	}
	writeJSON(w, map[string]int{
		"queue_depth": h.gt.QueueDepth(),
		"permits":     h.gt.Permits(),
	})
}

// handleGetObject looks up a single registry entry by kind and scoped name,
// e.g. /admin/object?kind=TABLE&name=db.t.
func (h *Handlers) handleGetObject(w http.ResponseWriter, r *http.Request) {
	kindParam := r.URL.Query().Get("kind")
	name := r.URL.Query().Get("name")

	kind, ok := catalog.ParseKind(kindParam)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown kind "+kindParam)
		return
	}

	obj, ok := h.cat.GetObject(catalog.Key{Kind: kind, Name: name})
	if !ok {
		writeError(w, http.StatusNotFound, "no "+kindParam+" object named "+name)
		return
	}
	writeJSON(w, obj)
}
