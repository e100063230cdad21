package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "lottery-server")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "12345", cfg.Port)
	assert.Equal(t, 8*1024, cfg.PacketLimit)
	assert.Equal(t, "PING", cfg.EndBatchMarker)
	assert.Equal(t, "PONG", cfg.AllDoneMarker)
	assert.Equal(t, "PONG", cfg.Ack)
	assert.Equal(t, "|", cfg.BetDelimiter)
	assert.Equal(t, 7574, cfg.WinningNumber)
	assert.Equal(t, "9100", cfg.MetricsPort)
	assert.Equal(t, 1024, cfg.PublishQueue)
	assert.Equal(t, 500*time.Millisecond, cfg.PublishTimeout)
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	body := []byte("port: \"7000\"\nagencies: 2\nstorage: memory\npoll_max_wait: 250ms\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	t.Setenv("AGENCIES", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, 3, cfg.Agencies)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, 250*time.Millisecond, cfg.PollMaxWait)
}

func TestLoadRejectsNonNumeric(t *testing.T) {
	t.Setenv("AGENCIES", "five")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AGENCIES")
}

func TestLoadDurationFromEnv(t *testing.T) {
	t.Setenv("PUBLISH_TIMEOUT", "2s")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.PublishTimeout)

	t.Setenv("PUBLISH_TIMEOUT", "soon")
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PUBLISH_TIMEOUT")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	cfg.AllDoneMarker = cfg.EndBatchMarker
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Agencies = 0
	assert.Error(t, cfg.Validate())
}
