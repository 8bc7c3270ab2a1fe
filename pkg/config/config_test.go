package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func withEnv(t *testing.T, env map[string]string) {
	t.Helper()
	prev := envLookup
	envLookup = func(k string) string { return env[k] }
	t.Cleanup(func() { envLookup = prev })
}

func TestUnmarshalHumanValues(t *testing.T) {
	src := `
server:
  max_body_size: 64KB
  read_timeout: 250ms
  write_timeout: 2
cursor:
  encrypted: false
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(src), &cfg))
	assert.Equal(t, int64(64000), cfg.Server.MaxBodySize.Int64())
	assert.Equal(t, 250*time.Millisecond, cfg.Server.ReadTimeout.Duration())
	assert.Equal(t, 2*time.Second, cfg.Server.WriteTimeout.Duration())
	assert.False(t, cfg.Cursor.EncryptionEnabled())

	var bad Config
	assert.Error(t, yaml.Unmarshal([]byte("server:\n  max_body_size: lots\n"), &bad))
}

func TestCursorEncryptionDefaultsOn(t *testing.T) {
	assert.True(t, CursorConfig{}.EncryptionEnabled())
}

func TestValidateAppliesDefaults(t *testing.T) {
	eff := EffectiveConfigResult{Config: &Config{}}
	require.NoError(t, ValidateConfig(&eff))
	cfg := eff.Config
	assert.Equal(t, BackendPebble, cfg.Storage.Backend)
	assert.Equal(t, "0.0.0.0:8080", eff.Addr)
	assert.Equal(t, defaultDBPath, eff.DBPath)
	assert.Equal(t, 5, cfg.Pagination.DefaultLimit)
	assert.Equal(t, 1000, cfg.Pagination.MaxLimit)
	assert.Equal(t, "secret_cursor", cfg.Cursor.PassphraseKey)
	assert.Equal(t, "0 3 * * *", cfg.Maintenance.Cron)
	assert.Equal(t, "comment:index", cfg.Storage.Redis.IndexKey)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"unknown backend":  func(c *Config) { c.Storage.Backend = "mysql" },
		"redis no url":     func(c *Config) { c.Storage.Backend = BackendRedis },
		"s3 no bucket":     func(c *Config) { c.Storage.Backend = BackendS3; c.Storage.S3.Endpoint = "localhost:9000" },
		"s3 half creds":    func(c *Config) { c.Storage.Backend = BackendS3; c.Storage.S3.Endpoint = "e"; c.Storage.S3.Bucket = "b"; c.Storage.S3.AccessKey = "a" },
		"bad cron":         func(c *Config) { c.Maintenance.Cron = "every day" },
		"default over max": func(c *Config) { c.Pagination.DefaultLimit = 50; c.Pagination.MaxLimit = 10 },
		"negative limit":   func(c *Config) { c.Pagination.DefaultLimit = -1 },
	}
	for name, mutate := range cases {
		cfg := &Config{}
		mutate(cfg)
		err := ValidateConfig(&EffectiveConfigResult{Config: cfg})
		assert.Error(t, err, name)
	}
	assert.Error(t, ValidateConfig(&EffectiveConfigResult{}))
}

func TestParseConfigEnvs(t *testing.T) {
	withEnv(t, map[string]string{
		"ITTE_ADDR":               "127.0.0.1:9090",
		"ITTE_SERVER_PORT":        "1", // ignored, ITTE_ADDR wins
		"ITTE_CORS_ORIGINS":       "https://a.example, https://b.example,",
		"ITTE_STORAGE_BACKEND":    "Redis",
		"ITTE_REDIS_URL":          "redis://localhost:6379/0",
		"ITTE_CURSOR_ENCRYPTED":   "false",
		"ITTE_MAX_BODY_SIZE":      "1MB",
		"ITTE_MAINTENANCE_CRON":   "*/5 * * * *",
		"ITTE_LOG_LEVEL":          "debug",
		"ITTE_CURSOR_LOCK_MEMORY": "yes",
	})
	cfg := &Config{}
	res, err := ParseConfigEnvs(cfg)
	require.NoError(t, err)
	assert.True(t, res.EnvUsed)
	assert.Equal(t, "127.0.0.1", cfg.Server.Address)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORS.AllowedOrigins)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.False(t, cfg.Cursor.EncryptionEnabled())
	assert.True(t, cfg.Cursor.LockMemory)
	assert.Equal(t, int64(1000000), cfg.Server.MaxBodySize.Int64())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestParseConfigEnvsReportsBadValues(t *testing.T) {
	withEnv(t, map[string]string{"ITTE_SERVER_PORT": "http", "ITTE_READ_TIMEOUT": "soon"})
	_, err := ParseConfigEnvs(&Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ITTE_SERVER_PORT")
	assert.Contains(t, err.Error(), "ITTE_READ_TIMEOUT")
}

func TestLoadEffectiveConfigLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7000\n  db_path: /var/lib/itte\nlogging:\n  level: warn\n"), 0o600))

	withEnv(t, map[string]string{"ITTE_LOG_LEVEL": "error"})
	flags, err := ParseConfigFlagsFrom([]string{"-config", path, "-addr", ":9999"})
	require.NoError(t, err)

	fileCfg, found, err := ParseConfigFile(flags)
	require.NoError(t, err)
	require.True(t, found)

	eff, err := LoadEffectiveConfig(flags, fileCfg, found)
	require.NoError(t, err)
	assert.Equal(t, "config+env+flags", eff.Source)
	assert.Equal(t, 9999, eff.Config.Server.Port)
	assert.Equal(t, "/var/lib/itte", eff.DBPath)
	assert.Equal(t, "error", eff.Config.Logging.Level)
}

func TestLoadEffectiveConfigMissingExplicitFile(t *testing.T) {
	withEnv(t, nil)
	flags, err := ParseConfigFlagsFrom([]string{"-config", filepath.Join(t.TempDir(), "nope.yaml")})
	require.NoError(t, err)
	fileCfg, found, err := ParseConfigFile(flags)
	require.NoError(t, err)
	assert.False(t, found)
	_, err = LoadEffectiveConfig(flags, fileCfg, found)
	assert.Error(t, err)

	flags, err = ParseConfigFlagsFrom(nil)
	require.NoError(t, err)
	eff, err := LoadEffectiveConfig(flags, &Config{}, false)
	require.NoError(t, err)
	assert.Equal(t, "defaults", eff.Source)
}

func TestGenSecretFlag(t *testing.T) {
	flags, err := ParseConfigFlagsFrom([]string{"-gen-secret"})
	require.NoError(t, err)
	assert.True(t, flags.GenSecret)

	_, err = ParseConfigFlagsFrom([]string{"-bogus"})
	assert.Error(t, err)
}

func TestSizeBytesString(t *testing.T) {
	assert.Equal(t, "64 kB", SizeBytes(64000).String())
}
