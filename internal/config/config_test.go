package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nmeacli.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("NMEACLI_ADDR", "192.168.1.50:10110")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "tcp", cfg.Source.Kind)
	assert.Equal(t, "192.168.1.50:10110", cfg.Source.Addr)
	assert.Equal(t, 9600, cfg.Source.Baud)
	assert.Equal(t, 2*time.Second, cfg.Source.DialTimeout)
	assert.Equal(t, 1024, cfg.Ingest.MaxFrameLen)
	assert.Equal(t, 500*time.Millisecond, cfg.UI.Refresh)
	assert.Equal(t, 100, cfg.UI.History)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeTempConfig(t, `
source:
  kind: serial
  device: /dev/ttyUSB0
  baud: 38400
ingest:
  max_frame_len: 512
ui:
  refresh: 250ms
  history: 50
web:
  enable: true
sim:
  enable: true
  center_lat_deg: 52.5
  center_lon_deg: 13.4
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "serial", cfg.Source.Kind)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Source.Device)
	assert.Equal(t, 38400, cfg.Source.Baud)
	assert.Equal(t, 512, cfg.Ingest.MaxFrameLen)
	assert.Equal(t, 250*time.Millisecond, cfg.UI.Refresh)
	assert.Equal(t, 50, cfg.UI.History)

	// Enabled sections pick up their listen defaults.
	assert.Equal(t, ":8080", cfg.Web.Listen)
	assert.Equal(t, "127.0.0.1:10110", cfg.Sim.Listen)
	assert.Equal(t, time.Second, cfg.Sim.Interval)
	assert.Equal(t, 120*time.Second, cfg.Sim.Period)
	assert.Equal(t, 0.5, cfg.Sim.RadiusNm)
	assert.Equal(t, 52.5, cfg.Sim.CenterLatDeg)
}

func TestLoad_BadSourceKind(t *testing.T) {
	path := writeTempConfig(t, "source:\n  kind: carrier-pigeon\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source.kind")
}

func TestLoad_TCPRequiresAddr(t *testing.T) {
	t.Setenv("NMEACLI_ADDR", "")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source.addr")
}

func TestLoad_SimSatisfiesAddrRequirement(t *testing.T) {
	t.Setenv("NMEACLI_ADDR", "")
	path := writeTempConfig(t, "sim:\n  enable: true\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Sim.Enable)
	assert.Empty(t, cfg.Source.Addr)
}

func TestLoad_ParseError(t *testing.T) {
	path := writeTempConfig(t, "source: [not a mapping\n")
	_, err := Load(path)
	require.Error(t, err)
}
