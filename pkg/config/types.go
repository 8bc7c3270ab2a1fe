package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Security    SecurityConfig    `yaml:"security"`
	Storage     StorageConfig     `yaml:"storage"`
	Cursor      CursorConfig      `yaml:"cursor"`
	Pagination  PaginationConfig  `yaml:"pagination"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Logging     LoggingConfig     `yaml:"logging"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// ServerConfig holds http listener settings.
type ServerConfig struct {
	Address      string    `yaml:"address"`
	Port         int       `yaml:"port"`
	DBPath       string    `yaml:"db_path"`
	MaxBodySize  SizeBytes `yaml:"max_body_size"`
	ReadTimeout  Duration  `yaml:"read_timeout"`
	WriteTimeout Duration  `yaml:"write_timeout"`
	// AssetsDir holds itte.js, itte.css and demo.html. Empty disables the
	// asset routes.
	AssetsDir string `yaml:"assets_dir"`
}

// SecurityConfig holds security related settings.
type SecurityConfig struct {
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// StorageConfig selects and configures the comment backend.
type StorageConfig struct {
	Backend string      `yaml:"backend"` // pebble | memory | redis | s3
	Redis   RedisConfig `yaml:"redis"`
	S3      S3Config    `yaml:"s3"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	IndexKey string `yaml:"index_key"`
}

type S3Config struct {
	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	Prefix       string `yaml:"prefix"`
	UseSSL       bool   `yaml:"use_ssl"`
	CreateBucket bool   `yaml:"create_bucket"`
}

// CursorConfig controls pagination cursor encryption.
type CursorConfig struct {
	// Encrypted defaults to true when unset.
	Encrypted     *bool  `yaml:"encrypted"`
	Passphrase    string `yaml:"passphrase"`
	PassphraseKey string `yaml:"passphrase_key"`
	LockMemory    bool   `yaml:"lock_memory"`
}

// EncryptionEnabled resolves the Encrypted default.
func (c CursorConfig) EncryptionEnabled() bool {
	return c.Encrypted == nil || *c.Encrypted
}

type PaginationConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// MaintenanceConfig schedules backend housekeeping.
type MaintenanceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// TelemetryConfig controls slow-operation reporting.
type TelemetryConfig struct {
	SlowThreshold Duration `yaml:"slow_threshold"`
}

// SizeBytes represents a number of bytes, unmarshaled from human-friendly strings like "64KB" or plain integers.
type SizeBytes int64

func (s *SizeBytes) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*s = 0
		return nil
	}
	v, err := ParseSizeBytes(node.Value)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSizeBytes parses "64KB", "1 MiB" or a plain byte count.
func ParseSizeBytes(raw string) (SizeBytes, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if v, err := humanize.ParseBytes(raw); err == nil {
		return SizeBytes(v), nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return SizeBytes(i), nil
	}
	return 0, fmt.Errorf("invalid size value: %q", raw)
}

func (s SizeBytes) Int64() int64 { return int64(s) }

// String renders the size the way humans write it, e.g. "64 kB".
func (s SizeBytes) String() string { return humanize.Bytes(uint64(s)) }

// Duration is a wrapper around time.Duration that supports YAML parsing from strings like "100ms" or plain numbers (interpreted as seconds).
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*d = Duration(0)
		return nil
	}
	v, err := ParseDuration(node.Value)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDuration parses a Go duration string or a number of seconds.
func ParseDuration(raw string) (Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		return Duration(td), nil
	}
	// allow numeric seconds
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Duration(time.Duration(f * float64(time.Second))), nil
	}
	return 0, fmt.Errorf("invalid duration value: %q", raw)
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }
