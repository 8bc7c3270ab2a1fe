package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
)

// holds parsed command-line flag values and which were set
type Flags struct {
	Addr      string
	DB        string
	Config    string
	GenSecret bool
	Set       map[string]bool
}

// holds the results of applying environment overrides
type EnvResult struct {
	EnvUsed bool
	Vars    []string
}

// holds the result of LoadEffectiveConfig
type EffectiveConfigResult struct {
	Config *Config
	Addr   string
	DBPath string
	Source string // layers that contributed, e.g. "config+env"
}

// parses command-line flags from os.Args
func ParseConfigFlags() (Flags, error) {
	return ParseConfigFlagsFrom(os.Args[1:])
}

// ParseConfigFlagsFrom parses args on a fresh flag set.
func ParseConfigFlagsFrom(args []string) (Flags, error) {
	set := flag.NewFlagSet("itte", flag.ContinueOnError)
	addrPtr := set.String("addr", ":8080", "HTTP listen address")
	dbPtr := set.String("db", defaultDBPath, "Pebble DB path")
	cfgPtr := set.String("config", "./config.yaml", "Path to config file")
	genPtr := set.Bool("gen-secret", false, "Print a fresh comment secret and exit")
	if err := set.Parse(args); err != nil {
		return Flags{}, err
	}

	setFlags := make(map[string]bool)
	set.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	return Flags{Addr: *addrPtr, DB: *dbPtr, Config: *cfgPtr, GenSecret: *genPtr, Set: setFlags}, nil
}

// loads config from file, returns config, found bool, and error
func ParseConfigFile(flags Flags) (*Config, bool, error) {
	cfgPath := ResolveConfigPath(flags.Config, flags.Set["config"])
	cfg, err := LoadConfigFile(cfgPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, false, nil
		}
		return nil, false, err
	}
	return cfg, true, nil
}

// envLookup is swapped in tests.
var envLookup = os.Getenv

// ParseConfigEnvs applies ITTE_* overrides onto cfg in place.
func ParseConfigEnvs(cfg *Config) (EnvResult, error) {
	var res EnvResult
	var errs []error

	get := func(name string) (string, bool) {
		v := strings.TrimSpace(envLookup("ITTE_" + name))
		if v == "" {
			return "", false
		}
		res.Vars = append(res.Vars, "ITTE_"+name)
		return v, true
	}
	parseList := func(v string) []string {
		parts := []string{}
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				parts = append(parts, s)
			}
		}
		return parts
	}
	parseBool := func(v string) bool {
		switch strings.ToLower(v) {
		case "1", "true", "yes":
			return true
		default:
			return false
		}
	}
	str := func(name string, dst *string) {
		if v, ok := get(name); ok {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := get(name); ok {
			*dst = parseBool(v)
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("ITTE_%s: %w", name, err))
				return
			}
			*dst = n
		}
	}
	size := func(name string, dst *SizeBytes) {
		if v, ok := get(name); ok {
			s, err := ParseSizeBytes(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("ITTE_%s: %w", name, err))
				return
			}
			*dst = s
		}
	}
	duration := func(name string, dst *Duration) {
		if v, ok := get(name); ok {
			d, err := ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("ITTE_%s: %w", name, err))
				return
			}
			*dst = d
		}
	}

	// a combined host:port wins over the split variables
	if v, ok := get("ADDR"); ok {
		applyAddr(cfg, v)
	} else {
		str("SERVER_ADDRESS", &cfg.Server.Address)
		integer("SERVER_PORT", &cfg.Server.Port)
	}
	str("DB_PATH", &cfg.Server.DBPath)
	size("MAX_BODY_SIZE", &cfg.Server.MaxBodySize)
	duration("READ_TIMEOUT", &cfg.Server.ReadTimeout)
	duration("WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	str("ASSETS_DIR", &cfg.Server.AssetsDir)

	if v, ok := get("CORS_ORIGINS"); ok {
		cfg.Security.CORS.AllowedOrigins = parseList(v)
	}

	if v, ok := get("STORAGE_BACKEND"); ok {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	str("REDIS_URL", &cfg.Storage.Redis.URL)
	str("REDIS_INDEX_KEY", &cfg.Storage.Redis.IndexKey)
	str("S3_ENDPOINT", &cfg.Storage.S3.Endpoint)
	str("S3_ACCESS_KEY", &cfg.Storage.S3.AccessKey)
	str("S3_SECRET_KEY", &cfg.Storage.S3.SecretKey)
	str("S3_BUCKET", &cfg.Storage.S3.Bucket)
	str("S3_REGION", &cfg.Storage.S3.Region)
	str("S3_PREFIX", &cfg.Storage.S3.Prefix)
	boolean("S3_USE_SSL", &cfg.Storage.S3.UseSSL)
	boolean("S3_CREATE_BUCKET", &cfg.Storage.S3.CreateBucket)

	if v, ok := get("CURSOR_ENCRYPTED"); ok {
		enc := parseBool(v)
		cfg.Cursor.Encrypted = &enc
	}
	str("CURSOR_PASSPHRASE", &cfg.Cursor.Passphrase)
	str("CURSOR_PASSPHRASE_KEY", &cfg.Cursor.PassphraseKey)
	boolean("CURSOR_LOCK_MEMORY", &cfg.Cursor.LockMemory)

	integer("PAGINATION_DEFAULT_LIMIT", &cfg.Pagination.DefaultLimit)
	integer("PAGINATION_MAX_LIMIT", &cfg.Pagination.MaxLimit)

	boolean("MAINTENANCE_ENABLED", &cfg.Maintenance.Enabled)
	str("MAINTENANCE_CRON", &cfg.Maintenance.Cron)

	str("LOG_LEVEL", &cfg.Logging.Level)
	duration("TELEMETRY_SLOW_THRESHOLD", &cfg.Telemetry.SlowThreshold)

	res.EnvUsed = len(res.Vars) > 0
	return res, errors.Join(errs...)
}

// LoadEffectiveConfig layers the config file, then ITTE_* env, then the
// -addr and -db flags, and reports which layers contributed.
func LoadEffectiveConfig(flags Flags, fileCfg *Config, fileExists bool) (EffectiveConfigResult, error) {
	var res EffectiveConfigResult

	if flags.Set["config"] && !fileExists {
		return res, fmt.Errorf("config file %s not found", flags.Config)
	}
	cfg := fileCfg
	if cfg == nil {
		cfg = &Config{}
	}
	var sources []string
	if fileExists {
		sources = append(sources, "config")
	}

	envRes, err := ParseConfigEnvs(cfg)
	if err != nil {
		return res, err
	}
	if envRes.EnvUsed {
		sources = append(sources, "env")
	}

	if flags.Set["addr"] {
		applyAddr(cfg, flags.Addr)
	}
	if flags.Set["db"] {
		cfg.Server.DBPath = flags.DB
	}
	if flags.Set["addr"] || flags.Set["db"] {
		sources = append(sources, "flags")
	}
	if len(sources) == 0 {
		sources = append(sources, "defaults")
	}

	res.Config = cfg
	res.Addr = cfg.Addr()
	res.DBPath = cfg.Server.DBPath
	res.Source = strings.Join(sources, "+")
	return res, nil
}

// applyAddr splits host:port into the server config; a bare host keeps the
// configured port.
func applyAddr(cfg *Config, addr string) {
	h, p, err := net.SplitHostPort(addr)
	if err != nil {
		cfg.Server.Address = addr
		return
	}
	cfg.Server.Address = h
	if pi, err := strconv.Atoi(p); err == nil {
		cfg.Server.Port = pi
	}
}
