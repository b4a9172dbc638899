package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"relay-proxy/internal/logger"
	"relay-proxy/internal/metrics"
	"relay-proxy/internal/stats"
	"relay-proxy/pkg/utils"
)

// snapshotTTL bounds how long hourly snapshot records are kept.
const snapshotTTL = 90 * 24 * time.Hour

// SnapshotSource is satisfied by *stats.Store.
type SnapshotSource interface {
	Snapshot() stats.Snapshot
}

// Exporter copies statistics snapshots to Redis. It only ever writes; the
// relay never reads its counters back.
//
// Keys, for prefix "relay":
//
//	relay:bytes                     total bytes relayed
//	relay:visits                    hash of destination host to visits
//	relay:snapshot:YYYY-MM-DD-HH    JSON report, last export in that UTC hour
type Exporter struct {
	rdb    *redis.Client
	prefix string
}

func NewExporter(addr, password, prefix string) *Exporter {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	return &Exporter{rdb: rdb, prefix: prefix}
}

// CheckConnection pings the server.
func (e *Exporter) CheckConnection(ctx context.Context) error {
	pong, err := e.rdb.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Log("Successfully connected to Redis: %s", pong)
	return nil
}

// Export writes snap in a single transaction, replacing the previous totals.
func (e *Exporter) Export(ctx context.Context, snap stats.Snapshot) error {
	data, err := json.Marshal(metrics.NewReport(snap))
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	visitsKey := e.prefix + ":visits"
	visits := make(map[string]interface{}, len(snap.Visits))
	for host, n := range snap.Visits {
		visits[host] = strconv.FormatUint(n, 10)
	}

	pipe := e.rdb.TxPipeline()
	pipe.Set(ctx, e.prefix+":bytes", strconv.FormatUint(snap.TotalBytes, 10), 0)
	pipe.Del(ctx, visitsKey)
	if len(visits) > 0 {
		pipe.HSet(ctx, visitsKey, visits)
	}
	pipe.Set(ctx, utils.SnapshotKey(e.prefix, snap.TakenAt), data, snapshotTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}

	logger.Debug("Exported snapshot: %d bytes, %d destinations", snap.TotalBytes, len(snap.Visits))
	return nil
}

// Run exports a fresh snapshot every interval until ctx is done. Failed
// exports are logged and retried on the next tick.
func (e *Exporter) Run(ctx context.Context, interval time.Duration, source SnapshotSource) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Export(ctx, source.Snapshot()); err != nil {
				logger.Error("Error exporting statistics: %v", err)
			}
		}
	}
}

func (e *Exporter) Close() error {
	return e.rdb.Close()
}
