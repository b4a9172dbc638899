package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitWritesJSONToFile(t *testing.T) {
	old := logger
	t.Cleanup(func() { logger = old })

	path := filepath.Join(t.TempDir(), "proxy.log")
	require.NoError(t, Init(path, false))

	Log("relayed %d requests", 3)
	Debug("hidden at info level")
	L().Info("final summary", zap.String("bandwidth_usage", "0.00MB"))
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "relayed 3 requests", first["msg"])
	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "0.00MB", second["bandwidth_usage"])
}

func TestInitBadPath(t *testing.T) {
	old := logger
	t.Cleanup(func() { logger = old })

	assert.Error(t, Init(filepath.Join(t.TempDir(), "missing", "proxy.log"), false))
}
