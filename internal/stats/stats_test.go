package stats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestStoreStartsEmpty(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot()

	assert.Zero(t, snap.TotalBytes)
	assert.Empty(t, snap.Visits)
	assert.Zero(t, s.Visits("example.com"))
}

func TestStoreRecordsVisitsAndBytes(t *testing.T) {
	s := NewStore()
	s.RecordVisit("example.com")
	s.RecordVisit("example.com")
	s.RecordVisit("golang.org")
	s.AddBytes(10)
	s.AddBytes(32)

	snap := s.Snapshot()
	assert.Equal(t, uint64(42), snap.TotalBytes)
	assert.Equal(t, map[string]uint64{"example.com": 2, "golang.org": 1}, snap.Visits)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.RecordVisit("a")
	snap := s.Snapshot()

	s.RecordVisit("a")
	s.RecordVisit("b")
	s.AddBytes(5)

	assert.Equal(t, map[string]uint64{"a": 1}, snap.Visits)
	assert.Zero(t, snap.TotalBytes)

	snap.Visits["a"] = 100
	assert.Equal(t, uint64(2), s.Visits("a"))
}

func TestStoreConcurrentIncrements(t *testing.T) {
	const (
		workers = 64
		perHost = 250
	)
	hosts := []string{"a.example", "b.example", "c.example"}

	s := NewStore()
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := 0; j < perHost; j++ {
				for _, h := range hosts {
					s.RecordVisit(h)
				}
				s.AddBytes(3)
				_ = s.Snapshot()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	snap := s.Snapshot()
	for _, h := range hosts {
		assert.Equal(t, uint64(workers*perHost), snap.Visits[h], h)
	}
	assert.Equal(t, uint64(workers*perHost*3), snap.TotalBytes)
}

func TestTopSitesOrder(t *testing.T) {
	snap := Snapshot{Visits: map[string]uint64{"a": 3, "b": 7, "c": 1}}

	assert.Equal(t, []HostVisits{
		{Host: "b", Visits: 7},
		{Host: "a", Visits: 3},
		{Host: "c", Visits: 1},
	}, snap.TopSites())
}

func TestTopSitesTiesAreDeterministic(t *testing.T) {
	snap := Snapshot{Visits: map[string]uint64{"z": 2, "m": 2, "a": 2, "top": 9}}

	assert.Equal(t, []HostVisits{
		{Host: "top", Visits: 9},
		{Host: "a", Visits: 2},
		{Host: "m", Visits: 2},
		{Host: "z", Visits: 2},
	}, snap.TopSites())
}

func TestBandwidthUsage(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{0, "0.00MB"},
		{1024 * 1024, "1.00MB"},
		{1572864, "1.50MB"},
		{5000, "0.00MB"},
		{10 * 1024 * 1024 * 1024, "10240.00MB"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.bytes), func(t *testing.T) {
			assert.Equal(t, tt.want, Snapshot{TotalBytes: tt.bytes}.BandwidthUsage())
		})
	}
}
