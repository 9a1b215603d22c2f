package config

import "time"

// Defaults mirror the original truffle project configuration.
const (
	DefaultRPCHost       = "localhost"
	DefaultRPCPort       = 8646
	DefaultNetworkName   = "development"
	DefaultTxTimeoutMS   = 240_000
	DefaultPollMS        = 1_000
	DefaultLogLevel      = "info"
	EnvPrefix            = "JOURNAL"
	MainNetworkID        = "1"
	DefaultNetworkID     = "default"
	ConfigDirName        = ".journal"
	DefaultArtifactsName = "artifacts"
)

// Timeouts used by the CLI around node round trips.
const (
	RPCDialTimeout = 10 * time.Second // connecting to the node
	RPCCallTimeout = 30 * time.Second // one read or network detection
)
