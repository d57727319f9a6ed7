package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Strangers/internal/app/sim"
	"github.com/dkeye/Strangers/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 32, cfg.SendBuffer)
	assert.Empty(t, cfg.AdminKey)
	require.Len(t, cfg.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.ICEServers[0].URLs)
	assert.Equal(t, sim.DefaultTiming(), cfg.Sim.Timing())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
mode: debug
port: 9000
admin_key: secret-admin
ice_servers:
  - urls: ["turn:turn.example.org:3478"]
    username: u
    credential: p
sim:
  grace_min: 10ms
  grace_max: 20ms
  max_follow_ups: 1
`)
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "secret-admin", cfg.AdminKey)
	require.Len(t, cfg.ICEServers, 1)
	assert.Equal(t, "u", cfg.ICEServers[0].Username)

	timing := cfg.Sim.Timing()
	assert.Equal(t, sim.Range{Min: 10 * time.Millisecond, Max: 20 * time.Millisecond}, timing.Grace)
	assert.Equal(t, 1, timing.MaxFollowUps)
	assert.Equal(t, sim.DefaultTiming().Opening, timing.Opening)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STRANGERS_PORT", "7000")
	t.Setenv("STRANGERS_SIM_GRACE_MAX", "9s")

	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 9*time.Second, cfg.Sim.GraceMax)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"port":        "port: 0\n",
		"mode":        "mode: verbose\n",
		"sim range":   "sim:\n  grace_min: 5s\n  grace_max: 1s\n",
		"ping":        "ping_period: 10ms\n",
		"send buffer": "send_buffer: 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadFile(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := config.LoadFile(writeConfig(t, "port: [\n"))
	assert.Error(t, err)
}
