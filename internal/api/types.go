package api

import (
	"relay-proxy/internal/metrics"
	"relay-proxy/internal/stats"
)

// MetricsResponse is the JSON body of /api/metrics.
type MetricsResponse struct {
	metrics.Report
	Error string `json:"error,omitempty"`
}

// pageData feeds the HTML metrics page.
type pageData struct {
	BandwidthUsage string
	HumanBytes     string
	Sites          []siteRow
}

type siteRow struct {
	stats.HostVisits
	HumanVisits string
}
