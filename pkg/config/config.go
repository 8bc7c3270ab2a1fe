package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by ValidateConfig.
const (
	defaultAddress       = "0.0.0.0"
	defaultPort          = 8080
	defaultDBPath        = "./.database"
	defaultBackend       = BackendPebble
	defaultMaxBodySize   = 64 * 1024
	defaultReadTimeout   = 10 * time.Second
	defaultWriteTimeout  = 10 * time.Second
	defaultRedisIndexKey = "comment:index"
	defaultS3Prefix      = "comments/"
	defaultPassphraseKey = "secret_cursor"
	defaultPageLimit     = 5
	defaultMaxPageLimit  = 1000
	// daily at 03:00
	defaultMaintenanceCron = "0 3 * * *"
	defaultSlowThreshold   = 200 * time.Millisecond
)

// Storage backend kinds.
const (
	BackendPebble = "pebble"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendS3     = "s3"
)

// Addr returns the HTTP server address as host:port.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = defaultAddress
	}
	port := c.Server.Port
	if port == 0 {
		port = defaultPort
	}
	return fmt.Sprintf("%s:%d", addr, port)
}

// LoadConfigFile reads and parses a config file.
func LoadConfigFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ResolveConfigPath returns the config file path, preferring flag, then env.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("ITTE_CONFIG"); p != "" {
		return p
	}
	return flagPath
}

// applyDefaults fills every unset field.
func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.DBPath == "" {
		c.Server.DBPath = defaultDBPath
	}
	if c.Server.MaxBodySize == 0 {
		c.Server.MaxBodySize = SizeBytes(defaultMaxBodySize)
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(defaultReadTimeout)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(defaultWriteTimeout)
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultBackend
	}
	if c.Storage.Redis.IndexKey == "" {
		c.Storage.Redis.IndexKey = defaultRedisIndexKey
	}
	if c.Storage.S3.Prefix == "" {
		c.Storage.S3.Prefix = defaultS3Prefix
	}

	if c.Cursor.PassphraseKey == "" {
		c.Cursor.PassphraseKey = defaultPassphraseKey
	}

	if c.Pagination.DefaultLimit == 0 {
		c.Pagination.DefaultLimit = defaultPageLimit
	}
	if c.Pagination.MaxLimit == 0 {
		c.Pagination.MaxLimit = defaultMaxPageLimit
	}

	if c.Maintenance.Cron == "" {
		c.Maintenance.Cron = defaultMaintenanceCron
	}
	if c.Telemetry.SlowThreshold == 0 {
		c.Telemetry.SlowThreshold = Duration(defaultSlowThreshold)
	}
}
