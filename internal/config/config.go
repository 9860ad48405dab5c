// Package config loads hookswapd configuration from defaults, a toml file
// and HOOKSWAP_ environment variables, in that priority order.
package config

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
)

// Config is the complete hookswapd configuration.
type Config struct {
	Server  ServerConfig  `toml:"server" mapstructure:"server"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	History HistoryConfig `toml:"history" mapstructure:"history"`
	Engine  EngineConfig  `toml:"engine" mapstructure:"engine"`
	Genesis GenesisConfig `toml:"genesis" mapstructure:"genesis"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`

	configPath string `toml:"-" mapstructure:"-"`
}

// ServerConfig controls the JSON-RPC and websocket listeners.
type ServerConfig struct {
	Host string `toml:"host" mapstructure:"host"`
	Port int    `toml:"port" mapstructure:"port"`

	// Websocket enables the event stream endpoint on /ws.
	Websocket bool `toml:"websocket" mapstructure:"websocket"`

	// ReadTimeout and WriteTimeout are in seconds.
	ReadTimeout  int `toml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout int `toml:"write_timeout" mapstructure:"write_timeout"`
}

// StorageConfig selects and locates the state backend.
type StorageConfig struct {
	// Backend is "pebble" or "bbolt".
	Backend string `toml:"backend" mapstructure:"backend"`
	Path    string `toml:"path" mapstructure:"path"`

	// CacheSize bounds the ledger read cache entry count.
	CacheSize int `toml:"cache_size" mapstructure:"cache_size"`
}

// HistoryConfig controls the sqlite transaction history.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Path    string `toml:"path" mapstructure:"path"`
}

// EngineConfig tunes transaction processing.
type EngineConfig struct {
	// SecondsPerDay is the usage window width. Only shortened in test
	// deployments.
	SecondsPerDay int64 `toml:"seconds_per_day" mapstructure:"seconds_per_day"`
}

// GenesisConfig funds native-currency accounts on first boot. Native
// accounts are otherwise only created by credits inside value operations
// that themselves require an existing caller account, so a fresh store needs
// at least one genesis account before pools or transfers can run.
type GenesisConfig struct {
	Accounts []GenesisAccount `toml:"accounts" mapstructure:"accounts"`
}

// GenesisAccount is one account to fund at genesis.
type GenesisAccount struct {
	// Address is the 32-byte account address in hex.
	Address string `toml:"address" mapstructure:"address"`
	Balance uint64 `toml:"balance" mapstructure:"balance"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" mapstructure:"level"`

	// Format is "json" or "console".
	Format string `toml:"format" mapstructure:"format"`
}

// GetConfigPath returns the path the configuration was loaded from, empty
// when running on defaults only.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Addr returns the server's host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// HistoryDir resolves the history path, defaulting next to the state path.
func (c *Config) HistoryDir() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return c.Storage.Path
}

// ValidateConfig rejects configurations the server cannot run with.
func ValidateConfig(c *Config) error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Storage.Backend {
	case "pebble", "bbolt":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path cannot be empty")
	}
	if c.Engine.SecondsPerDay <= 0 {
		return fmt.Errorf("seconds_per_day must be positive, got %d", c.Engine.SecondsPerDay)
	}
	for i, account := range c.Genesis.Accounts {
		raw, err := hex.DecodeString(account.Address)
		if err != nil || len(raw) != 32 {
			return fmt.Errorf("genesis account %d: address must be 32 bytes of hex, got %q", i, account.Address)
		}
		if account.Balance == 0 {
			return fmt.Errorf("genesis account %d (%s): balance must be positive", i, account.Address)
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// DefaultConfigPath returns the default configuration file location under
// the given directory.
func DefaultConfigPath(dir string) string {
	return filepath.Join(dir, "hookswapd.toml")
}
