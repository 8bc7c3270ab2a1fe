package banner

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/PeterCxy/itte/pkg/config"
)

const banner = `
 ___ _   _       
|_ _| |_| |_ ___ 
 | ||  _|  _/ -_)
|___|\__|\__\___|
`

// Print writes the banner and effective configuration summary to w.
func Print(w io.Writer, eff config.EffectiveConfigResult, version string) {
	cfg := eff.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	src := eff.Source
	if src == "" {
		src = "defaults"
	}

	fmt.Fprint(w, banner)
	fmt.Fprintln(w, "== Config =====================================================")
	fmt.Fprintf(w, "Listen:   %s\n", eff.Addr)
	fmt.Fprintf(w, "Backend:  %s\n", describeBackend(eff))
	if version != "" {
		fmt.Fprintf(w, "Version:  %s\n", version)
	}
	fmt.Fprintf(w, "Config:   %s\n", src)

	fmt.Fprintln(w, "\n== Production? =================================================")
	if cfg.Cursor.EncryptionEnabled() {
		switch {
		case cfg.Cursor.Passphrase != "":
			fmt.Fprintln(w, "- Cursor: encrypted (configured passphrase)")
		default:
			fmt.Fprintf(w, "- Cursor: encrypted (stored passphrase %q)\n", cfg.Cursor.PassphraseKey)
		}
	} else {
		fmt.Fprintln(w, "- Cursor: plain (store keys visible to clients)")
	}

	origins := cfg.Security.CORS.AllowedOrigins
	switch {
	case len(origins) == 0:
		fmt.Fprintln(w, "- CORS: no origins allowed (embedding disabled)")
	case len(origins) == 1 && origins[0] == "*":
		fmt.Fprintln(w, "- CORS: any origin")
	default:
		fmt.Fprintf(w, "- CORS: %s\n", strings.Join(origins, ", "))
	}

	fmt.Fprintf(w, "- Body limit: %s\n", humanize.Bytes(uint64(cfg.Server.MaxBodySize)))
	fmt.Fprintf(w, "- Page size: default %d, max %s\n", cfg.Pagination.DefaultLimit, humanize.Comma(int64(cfg.Pagination.MaxLimit)))

	if cfg.Maintenance.Enabled {
		fmt.Fprintf(w, "- Maintenance: enabled (cron=%s)\n", cfg.Maintenance.Cron)
	} else {
		fmt.Fprintln(w, "- Maintenance: disabled")
	}
	fmt.Fprintln(w)
}

func describeBackend(eff config.EffectiveConfigResult) string {
	if eff.Config == nil {
		return "unknown"
	}
	st := eff.Config.Storage
	switch st.Backend {
	case config.BackendPebble:
		return "pebble (" + eff.DBPath + ")"
	case config.BackendRedis:
		return "redis (index " + st.Redis.IndexKey + ")"
	case config.BackendS3:
		return "s3 (" + st.S3.Endpoint + "/" + st.S3.Bucket + ")"
	default:
		return st.Backend
	}
}
