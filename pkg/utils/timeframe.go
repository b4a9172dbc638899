package utils

import (
	"fmt"
	"time"
)

// SnapshotKey names the hourly snapshot record for t, e.g.
// "relay:snapshot:2024-03-22-15". Hours are UTC.
func SnapshotKey(prefix string, t time.Time) string {
	return fmt.Sprintf("%s:snapshot:%s", prefix, t.UTC().Format("2006-01-02-15"))
}
