package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mohsinsiddi/journal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.DefaultNetwork)
	assert.Equal(t, 240*time.Second, cfg.TxTimeout())
	assert.Equal(t, time.Second, cfg.PollInterval())
	assert.False(t, cfg.DecodeLogs)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"development", "live", "morden", "staging"}, cfg.NetworkNames())
	assert.Equal(t, filepath.Join(dir, "artifacts"), cfg.ArtifactsPath())
}

func TestDefaultNetworksMirrorTruffle(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name string
		id   string
		url  string
	}{
		{"live", "1", "http://localhost:8646"},
		{"morden", "2", "http://192.168.1.5:8545"},
		{"staging", "1337", "http://localhost:8646"},
		{"development", "default", "http://localhost:8646"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := cfg.Network(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, n.Name)
			assert.Equal(t, tt.id, n.NetworkID)
			assert.Equal(t, tt.url, n.RPCURL())
		})
	}
}

func TestNetworkDefaultsToDefaultNetwork(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	n, err := cfg.Network("")
	require.NoError(t, err)
	assert.Equal(t, "development", n.Name)

	n, err = cfg.Network("MORDEN")
	require.NoError(t, err)
	assert.Equal(t, "morden", n.Name)
}

func TestUnknownNetwork(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	_, err = cfg.Network("ropsten")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown network "ropsten"`)
	assert.Contains(t, err.Error(), "development, live, morden, staging")
}

func TestNetworkInheritsTopLevelSettings(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg.RPC = config.Endpoint{Host: "10.0.0.7", Port: 9000}
	cfg.From = "0x627306090abab3a6e1400e9345bc60c78a8bef57"
	cfg.Gas = 4_000_000
	cfg.Networks["staging"] = config.Network{NetworkID: "1337", GasPrice: "1"}

	n, err := cfg.Network("staging")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.7:9000", n.RPCURL())
	assert.Equal(t, cfg.From, n.From)
	assert.Equal(t, uint64(4_000_000), n.Gas)
	assert.Equal(t, "1", n.GasPrice, "network values win")
}

func TestNetworkURLOverridesHostPort(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg.Networks["ws"] = config.Network{NetworkID: "5", URL: "ws://node:8546", Host: "ignored"}

	n, err := cfg.Network("ws")
	require.NoError(t, err)
	assert.Equal(t, "ws://node:8546", n.RPCURL())
}

func TestNetworkByID(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"live"}, cfg.NetworkByID("1"))
	assert.Empty(t, cfg.NetworkByID("42"))
}

// ---------------------------------------------------------------------------
// files and environment
// ---------------------------------------------------------------------------

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.DefaultNetwork = "morden"
	cfg.From = "0x627306090abab3a6e1400e9345bc60c78a8bef57"
	cfg.TxTimeoutMS = 0
	cfg.DecodeLogs = true
	cfg.Networks["private"] = config.Network{NetworkID: "4242", Host: "node", Port: 8545}

	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "morden", reloaded.DefaultNetwork)
	assert.Equal(t, cfg.From, reloaded.From)
	assert.Equal(t, time.Duration(0), reloaded.TxTimeout())
	assert.True(t, reloaded.DecodeLogs)

	n, err := reloaded.Network("private")
	require.NoError(t, err)
	assert.Equal(t, "4242", n.NetworkID)
	assert.Equal(t, "http://node:8545", n.RPCURL())
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := `
default_network: live
poll_interval_ms: 250
networks:
  live:
    network_id: 1
    url: http://mainnet.example:8545
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval())

	n, err := cfg.Network("")
	require.NoError(t, err)
	assert.Equal(t, "1", n.NetworkID, "numeric ids are read as strings")
	assert.Equal(t, "http://mainnet.example:8545", n.RPCURL())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("JOURNAL_DEFAULT_NETWORK", "morden")
	t.Setenv("JOURNAL_TX_TIMEOUT_MS", "5000")
	t.Setenv("JOURNAL_DECODE_LOGS", "true")

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "morden", cfg.DefaultNetwork)
	assert.Equal(t, 5*time.Second, cfg.TxTimeout())
	assert.True(t, cfg.DecodeLogs)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"negative timeout", `{"tx_timeout_ms": -1}`, "tx_timeout_ms"},
		{"zero poll interval", `{"poll_interval_ms": 0}`, "poll_interval_ms"},
		{"bad log level", `{"log_level": "loud"}`, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(tt.json), 0o600))
			_, err := config.Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o600))
	_, err := config.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestConfigFileCreatedOnSave(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	require.NoError(t, cfg.Save())

	_, err := os.Stat(filepath.Join(dir, "config.json"))
	assert.NoError(t, err, "config.json should be created on save")
}

func TestConfigDir(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	assert.Equal(t, dir, cfg.Dir())
}

func TestLoadFromNonExistentDir(t *testing.T) {
	dir := t.TempDir() + "/subdir"
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	// Should create dir and return defaults.
	assert.Equal(t, "development", cfg.DefaultNetwork)
}
