package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"database_dsn":    "postgres://cfg",
		"schema_source":   "chain",
		"schema_dir":      "/etc/nodestore/types",
		"decorators_file": "/etc/nodestore/decorators.yaml",
		"log_level":       "warn",
		"log_format":      "text",
		"tx_timeout":      "1m",
		"metrics_file":    "/var/lib/node_exporter/nodectl.prom",
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		parseJson(cfg, []string{"-config", pathFlag})

		assert.Equal(t, "postgres://cfg", cfg.DatabaseDSN)
		assert.Equal(t, "chain", cfg.SchemaSource)
		assert.Equal(t, "/etc/nodestore/types", cfg.SchemaDir)
		assert.Equal(t, "/etc/nodestore/decorators.yaml", cfg.DecoratorsFile)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, time.Minute, cfg.TxTimeout)
		assert.Equal(t, "/var/lib/node_exporter/nodectl.prom", cfg.MetricsFile)
	})

	t.Run("partial json keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"log_level": "debug"})
		cfg := &Config{DatabaseDSN: "keep", LogLevel: "info"}
		parseJson(cfg, []string{"-c", partial})

		assert.Equal(t, "keep", cfg.DatabaseDSN)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		cfg := &Config{DatabaseDSN: "defaults", TxTimeout: 2 * time.Second}
		parseJson(cfg, []string{"migrate"})

		assert.Equal(t, "defaults", cfg.DatabaseDSN)
		assert.Equal(t, 2*time.Second, cfg.TxTimeout)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Panics(t, func() { parseJson(&Config{}, []string{"-config", bad}) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		require.Panics(t, func() { parseJson(&Config{}, []string{"-c", filepath.Join(dir, "nope.json")}) })
	})
}
