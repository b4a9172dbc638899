package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"relay-proxy/internal/stats"
)

// SnapshotSource is satisfied by *stats.Store.
type SnapshotSource interface {
	Snapshot() stats.Snapshot
}

var (
	bytesDesc = prometheus.NewDesc(
		"relay_bytes_relayed_total",
		"Bytes of upstream response bodies relayed to clients",
		nil, nil,
	)
	visitsDesc = prometheus.NewDesc(
		"relay_destination_visits_total",
		"Proxied requests per destination host",
		[]string{"host"}, nil,
	)
)

// Collector exposes a SnapshotSource as Prometheus counters. Values are read
// from a fresh snapshot on every scrape.
type Collector struct {
	source SnapshotSource
}

func NewCollector(source SnapshotSource) *Collector {
	return &Collector{source: source}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- bytesDesc
	ch <- visitsDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.source.Snapshot()

	ch <- prometheus.MustNewConstMetric(bytesDesc, prometheus.CounterValue, float64(snap.TotalBytes))
	for host, visits := range snap.Visits {
		ch <- prometheus.MustNewConstMetric(visitsDesc, prometheus.CounterValue, float64(visits), host)
	}
}

// Handler serves source on a private registry.
func Handler(source SnapshotSource) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCollector(source)); err != nil {
		return nil, err
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}
