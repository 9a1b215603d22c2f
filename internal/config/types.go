package config

import (
	"fmt"
	"time"
)

// Config holds all journal configuration.
type Config struct {
	RPC            Endpoint           `json:"rpc"              mapstructure:"rpc"`
	DefaultNetwork string             `json:"default_network"  mapstructure:"default_network"`
	Networks       map[string]Network `json:"networks"         mapstructure:"networks"`
	From           string             `json:"from,omitempty"   mapstructure:"from"`          // default sender; empty = first node account
	Gas            uint64             `json:"gas,omitempty"    mapstructure:"gas"`           // 0 = node decides
	GasPrice       string             `json:"gas_price,omitempty" mapstructure:"gas_price"`  // wei, decimal or 0x hex
	TxTimeoutMS    int64              `json:"tx_timeout_ms"    mapstructure:"tx_timeout_ms"` // 0 = wait forever
	PollIntervalMS int64              `json:"poll_interval_ms" mapstructure:"poll_interval_ms"`
	DecodeLogs     bool               `json:"decode_logs"      mapstructure:"decode_logs"`
	ArtifactsDir   string             `json:"artifacts_dir,omitempty" mapstructure:"artifacts_dir"`
	LogLevel       string             `json:"log_level"        mapstructure:"log_level"`

	// internal: config dir path used for Save()
	configDir string
}

// Endpoint is a node host and port.
type Endpoint struct {
	Host string `json:"host,omitempty" mapstructure:"host"`
	Port int    `json:"port,omitempty" mapstructure:"port"`
}

// Network is a named deployment target. An empty host or port falls back to
// the top-level rpc endpoint.
type Network struct {
	NetworkID string `json:"network_id"          mapstructure:"network_id"` // "1", "2", ... or "default"
	Host      string `json:"host,omitempty"      mapstructure:"host"`
	Port      int    `json:"port,omitempty"      mapstructure:"port"`
	URL       string `json:"url,omitempty"       mapstructure:"url"` // full URL, overrides host/port (ws://, ipc path)
	From      string `json:"from,omitempty"      mapstructure:"from"`
	Gas       uint64 `json:"gas,omitempty"       mapstructure:"gas"`
	GasPrice  string `json:"gas_price,omitempty" mapstructure:"gas_price"`
}

// ResolvedNetwork is a Network with its name and endpoint filled in.
type ResolvedNetwork struct {
	Name string
	Network
}

// RPCURL returns the node URL for the network.
func (n ResolvedNetwork) RPCURL() string {
	if n.URL != "" {
		return n.URL
	}
	return fmt.Sprintf("http://%s:%d", n.Host, n.Port)
}

// TxTimeout returns the confirmation timeout. 0 disables it.
func (c *Config) TxTimeout() time.Duration {
	return time.Duration(c.TxTimeoutMS) * time.Millisecond
}

// PollInterval returns the delay between receipt polls.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}
