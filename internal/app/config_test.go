package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, source, err := LoadConfig("")
	require.NoError(t, err)
	assert.Nil(t, source)

	assert.Equal(t, "sigflow", cfg.Service.Name)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, []string{"localhost:9000"}, cfg.ClickHouse.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Recorder.Sync)
}

func TestLoadConfig_YAMLOverrides(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
service:
  name: example-app
server:
  addr: ":9090"
  shutdown_timeout: 5s
clickhouse:
  addr: ["ch1:9000", "ch2:9000"]
  database: observability
recorder:
  sync: true
  queue_size: 64
log:
  level: debug
  format: json
`)

	cfg, source, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, source)
	assert.Equal(t, path, source.Path())

	assert.Equal(t, "example-app", cfg.Service.Name)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"ch1:9000", "ch2:9000"}, cfg.ClickHouse.Addr)
	assert.Equal(t, "observability", cfg.ClickHouse.Database)
	assert.True(t, cfg.Recorder.Sync)
	assert.Equal(t, 64, cfg.Recorder.QueueSize)
	assert.Equal(t, "debug", cfg.Log.Level)

	// 文件未覆盖的字段保持默认值
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	path := writeConfig(t, "config.yaml", "server:\n  addr: \"\"\n")
	_, _, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrNoListenAddr)

	path = writeConfig(t, "config.yaml", "clickhouse:\n  addr: []\n")
	_, _, err = LoadConfig(path)
	assert.ErrorIs(t, err, ErrNoStoreAddr)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Server.Addr = ""
	assert.ErrorIs(t, cfg.Validate(), ErrNoListenAddr)
}
