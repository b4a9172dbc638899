package main

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-proxy/internal/stats"
	"relay-proxy/internal/storage"
)

func TestFinishWithoutExporter(t *testing.T) {
	store := stats.NewStore()
	store.RecordVisit("example.com")

	assert.NoError(t, finish(store, nil))
}

func TestFinishExportsFinalSnapshot(t *testing.T) {
	mr := miniredis.RunT(t)

	store := stats.NewStore()
	store.RecordVisit("example.com")
	store.RecordVisit("example.com")
	store.AddBytes(512)

	require.NoError(t, finish(store, storage.NewExporter(mr.Addr(), "", "test")))

	v, err := mr.Get("test:bytes")
	require.NoError(t, err)
	assert.Equal(t, "512", v)
	assert.Equal(t, "2", mr.HGet("test:visits", "example.com"))
}

func TestFinishReportsExportFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	exporter := storage.NewExporter(mr.Addr(), "", "test")
	mr.Close()

	assert.Error(t, finish(stats.NewStore(), exporter))
}

func TestRunRejectsBadFlags(t *testing.T) {
	assert.Error(t, run([]string{"--user", "missing-separator"}))
}
