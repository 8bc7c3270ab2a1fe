package config

import (
	"fmt"
	"strings"

	"github.com/adhocore/gronx"
)

// ValidateConfig sets defaults and fails fast on invalid values.
func ValidateConfig(eff *EffectiveConfigResult) error {
	cfg := eff.Config
	if cfg == nil {
		return fmt.Errorf("effective config is nil")
	}
	cfg.applyDefaults()
	eff.Addr = cfg.Addr()
	eff.DBPath = cfg.Server.DBPath

	switch cfg.Storage.Backend {
	case BackendPebble, BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(cfg.Storage.Redis.URL) == "" {
			return fmt.Errorf("storage.backend is redis but storage.redis.url is empty")
		}
	case BackendS3:
		s3 := cfg.Storage.S3
		if s3.Endpoint == "" || s3.Bucket == "" {
			return fmt.Errorf("storage.backend is s3 but storage.s3.endpoint or storage.s3.bucket is empty")
		}
		if (s3.AccessKey == "") != (s3.SecretKey == "") {
			return fmt.Errorf("incomplete s3 credentials: set both storage.s3.access_key and storage.s3.secret_key")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q (want pebble, memory, redis or s3)", cfg.Storage.Backend)
	}

	p := cfg.Pagination
	if p.DefaultLimit < 0 || p.MaxLimit < 0 {
		return fmt.Errorf("pagination limits must be positive")
	}
	if p.DefaultLimit > p.MaxLimit {
		return fmt.Errorf("pagination.default_limit %d exceeds pagination.max_limit %d", p.DefaultLimit, p.MaxLimit)
	}

	if cfg.Server.MaxBodySize < 0 {
		return fmt.Errorf("server.max_body_size must be positive")
	}

	if !gronx.New().IsValid(cfg.Maintenance.Cron) {
		return fmt.Errorf("invalid maintenance.cron: %q is not a valid cron expression", cfg.Maintenance.Cron)
	}
	return nil
}
