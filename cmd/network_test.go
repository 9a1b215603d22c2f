package cmd

import (
	"errors"
	"testing"

	"github.com/Mohsinsiddi/journal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionFlag(t *testing.T) {
	h := newHarness(t, "2")
	out := h.mustRun("--version")
	assert.Contains(t, out, "journal")
	assert.Contains(t, out, Version)
}

func TestNetworkList(t *testing.T) {
	h := newHarness(t, "2")
	out := h.mustRun("network", "list")

	for _, want := range []string{"development", "live", "morden", "staging", "http://192.168.1.5:8545", "http://localhost:8646", "1337"} {
		assert.Contains(t, out, want)
	}
	assert.Zero(t, h.dials, "listing networks does not touch the node")
}

func TestNetworkUsePersists(t *testing.T) {
	h := newHarness(t, "2")
	out := h.mustRun("network", "use", "morden")
	assert.Contains(t, out, "Default network set to morden")

	cfg, err := config.Load(h.dir)
	require.NoError(t, err)
	assert.Equal(t, "morden", cfg.DefaultNetwork)
}

func TestUnknownNetworkFlag(t *testing.T) {
	h := newHarness(t, "2")
	_, err := h.run("--network", "ropsten", "network", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown network "ropsten"`)
	assert.Contains(t, err.Error(), "journal network list")
}

func TestNetworkDetect(t *testing.T) {
	tests := []struct {
		name      string
		networkID string
		want      []string
	}{
		{"morden", "2", []string{"morden", mordenJournal, "ReviewToken"}},
		{"main network falls back to default", "1", []string{"live", defaultJournal}},
		{"unknown network", "42", []string{"not deployed on this network"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.networkID)
			out := h.mustRun("network", "detect")
			assert.Contains(t, out, tt.networkID)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
			assert.Equal(t, 1, h.node.Calls("net_version"))
		})
	}
}

func TestNetworkDetectShowsGasAndBlock(t *testing.T) {
	h := newHarness(t, "2")
	out := h.mustRun("network", "detect")
	assert.Contains(t, out, "Latest block")
	assert.Contains(t, out, "1.00 gwei")
}

func TestNetworkDetectToleratesMissingGasPrice(t *testing.T) {
	h := newHarness(t, "2")
	h.node.Fail("eth_gasPrice", errors.New("not supported"))
	out := h.mustRun("network", "detect")
	assert.NotContains(t, out, "gwei")
	assert.Contains(t, out, mordenJournal)
}
