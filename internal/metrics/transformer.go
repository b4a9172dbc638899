package metrics

import "relay-proxy/internal/stats"

// Report is the operator-facing view of a statistics snapshot.
type Report struct {
	BandwidthUsage string             `json:"bandwidth_usage"`
	TotalBytes     uint64             `json:"total_bytes"`
	TopSites       []stats.HostVisits `json:"top_sites"`
}

func NewReport(snap stats.Snapshot) Report {
	return Report{
		BandwidthUsage: snap.BandwidthUsage(),
		TotalBytes:     snap.TotalBytes,
		TopSites:       snap.TopSites(),
	}
}
