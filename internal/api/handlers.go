package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	humanize "github.com/dustin/go-humanize"
	"github.com/gorilla/mux"

	"relay-proxy/internal/logger"
	"relay-proxy/internal/metrics"
	"relay-proxy/internal/proxy"
	"relay-proxy/internal/stats"
)

// SnapshotSource is satisfied by *stats.Store.
type SnapshotSource interface {
	Snapshot() stats.Snapshot
}

type Handler struct {
	source     SnapshotSource
	prometheus http.Handler
}

// NewHandler serves reports built from source. prometheus may be nil to leave
// /metrics/prometheus unrouted.
func NewHandler(source SnapshotSource, prometheus http.Handler) *Handler {
	return &Handler{source: source, prometheus: prometheus}
}

// NewRouter routes the reporting endpoints and sends everything else to relay.
// Reporting routes never match a request that names a relay target.
func NewRouter(relay http.Handler, h *Handler) *mux.Router {
	router := mux.NewRouter().SkipClean(true)

	reporting := router.MatcherFunc(withoutTarget).Methods(http.MethodGet).Subrouter()
	reporting.HandleFunc("/metrics", h.HandleMetrics)
	reporting.HandleFunc("/api/metrics", h.HandleMetricsJSON)
	if h.prometheus != nil {
		reporting.Handle("/metrics/prometheus", h.prometheus)
	}

	router.PathPrefix("/").Handler(relay)
	return router
}

func withoutTarget(r *http.Request, _ *mux.RouteMatch) bool {
	return r.Header.Get(proxy.TargetHeader) == ""
}

// HandleMetrics renders the current statistics as an HTML page.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	snap := h.source.Snapshot()

	data := pageData{
		BandwidthUsage: snap.BandwidthUsage(),
		HumanBytes:     humanize.IBytes(snap.TotalBytes),
	}
	for _, site := range snap.TopSites() {
		data.Sites = append(data.Sites, siteRow{
			HostVisits:  site,
			HumanVisits: humanize.Comma(int64(site.Visits)),
		})
	}

	var buf bytes.Buffer
	if err := metricsPage.Execute(&buf, data); err != nil {
		logger.Error("Failed to render metrics page: %v", err)
		http.Error(w, "Failed to render metrics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// HandleMetricsJSON serves the same report as JSON.
func (h *Handler) HandleMetricsJSON(w http.ResponseWriter, r *http.Request) {
	logger.Debug("Handling metrics request from %s", r.RemoteAddr)

	sendJSONResponse(w, MetricsResponse{
		Report: metrics.NewReport(h.source.Snapshot()),
	}, http.StatusOK)
}

func sendJSONResponse(w http.ResponseWriter, response interface{}, statusCode int) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to encode response: %v", err)
	}
}
