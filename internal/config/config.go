package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const configFile = "config.json"

// Load reads config from dir, then JOURNAL_* environment variables, on top of
// the defaults. dir defaults to ~/.journal. A missing config file is not an
// error. Both config.json and config.yaml are accepted.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ConfigDirName)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.configDir = dir
	if cfg.Networks == nil {
		cfg.Networks = make(map[string]Network)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to config.json in the config directory.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.TxTimeoutMS < 0 {
		return fmt.Errorf("tx_timeout_ms must not be negative, got %d", c.TxTimeoutMS)
	}
	if c.PollIntervalMS <= 0 {
		return fmt.Errorf("poll_interval_ms must be positive, got %d", c.PollIntervalMS)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// ArtifactsPath returns the directory deployments are recorded in.
func (c *Config) ArtifactsPath() string {
	if c.ArtifactsDir != "" {
		return c.ArtifactsDir
	}
	return filepath.Join(c.configDir, DefaultArtifactsName)
}

// NetworkNames returns the configured network names sorted.
func (c *Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Network returns the named network, or the default one for "". Missing
// endpoint and transaction settings are inherited from the top level.
func (c *Config) Network(name string) (ResolvedNetwork, error) {
	if name == "" {
		name = c.DefaultNetwork
	}
	name = strings.ToLower(name)
	n, ok := c.Networks[name]
	if !ok {
		return ResolvedNetwork{}, fmt.Errorf("unknown network %q (configured: %s)", name, strings.Join(c.NetworkNames(), ", "))
	}
	if n.Host == "" {
		n.Host = c.RPC.Host
	}
	if n.Host == "" {
		n.Host = DefaultRPCHost
	}
	if n.Port == 0 {
		n.Port = c.RPC.Port
	}
	if n.Port == 0 {
		n.Port = DefaultRPCPort
	}
	if n.From == "" {
		n.From = c.From
	}
	if n.Gas == 0 {
		n.Gas = c.Gas
	}
	if n.GasPrice == "" {
		n.GasPrice = c.GasPrice
	}
	return ResolvedNetwork{Name: name, Network: n}, nil
}

// NetworkByID returns the configured networks whose network_id is id, sorted
// by name.
func (c *Config) NetworkByID(id string) []string {
	var names []string
	for _, name := range c.NetworkNames() {
		if c.Networks[name].NetworkID == id {
			names = append(names, name)
		}
	}
	return names
}

// --- helpers ---

func setDefaults(v *viper.Viper) {
	v.SetDefault("rpc.host", DefaultRPCHost)
	v.SetDefault("rpc.port", DefaultRPCPort)
	v.SetDefault("default_network", DefaultNetworkName)
	v.SetDefault("networks", map[string]any{
		"live": map[string]any{
			"network_id": MainNetworkID,
			"host":       DefaultRPCHost,
			"port":       DefaultRPCPort,
		},
		"morden": map[string]any{
			"network_id": "2",
			"host":       "192.168.1.5",
			"port":       8545,
		},
		"staging": map[string]any{
			"network_id": "1337",
		},
		"development": map[string]any{
			"network_id": DefaultNetworkID,
		},
	})
	v.SetDefault("from", "")
	v.SetDefault("gas", 0)
	v.SetDefault("gas_price", "")
	v.SetDefault("tx_timeout_ms", DefaultTxTimeoutMS)
	v.SetDefault("poll_interval_ms", DefaultPollMS)
	v.SetDefault("decode_logs", false)
	v.SetDefault("artifacts_dir", "")
	v.SetDefault("log_level", DefaultLogLevel)
}
