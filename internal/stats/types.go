package stats

import (
	"fmt"
	"sort"
	"time"
)

const bytesPerMegabyte = 1024 * 1024

// HostVisits is one row of the destination ranking.
type HostVisits struct {
	Host   string `json:"url"`
	Visits uint64 `json:"visits"`
}

// Snapshot is a point-in-time copy of a Store. It shares nothing with the
// store it came from.
type Snapshot struct {
	TotalBytes uint64            `json:"total_bytes_relayed"`
	Visits     map[string]uint64 `json:"visits_by_destination"`
	TakenAt    time.Time         `json:"taken_at"`
}

// TopSites returns destinations ordered by descending visit count. Equal
// counts are ordered by host name.
func (s Snapshot) TopSites() []HostVisits {
	sites := make([]HostVisits, 0, len(s.Visits))
	for host, visits := range s.Visits {
		sites = append(sites, HostVisits{Host: host, Visits: visits})
	}
	sort.SliceStable(sites, func(i, j int) bool {
		if sites[i].Visits != sites[j].Visits {
			return sites[i].Visits > sites[j].Visits
		}
		return sites[i].Host < sites[j].Host
	})
	return sites
}

func (s Snapshot) Megabytes() float64 {
	return float64(s.TotalBytes) / bytesPerMegabyte
}

// BandwidthUsage formats TotalBytes as megabytes with two decimals, e.g. "1.50MB".
func (s Snapshot) BandwidthUsage() string {
	return fmt.Sprintf("%.2fMB", s.Megabytes())
}
