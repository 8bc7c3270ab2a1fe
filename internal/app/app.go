package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"

	"github.com/PeterCxy/itte/internal/maintenance"
	"github.com/PeterCxy/itte/pkg/config"
	"github.com/PeterCxy/itte/pkg/logger"
	"github.com/PeterCxy/itte/pkg/security"
	"github.com/PeterCxy/itte/pkg/state"
	"github.com/PeterCxy/itte/pkg/state/shutdown"
	"github.com/PeterCxy/itte/pkg/store"
	"github.com/PeterCxy/itte/pkg/store/db"
	"github.com/PeterCxy/itte/pkg/store/db/pebbledb"
	"github.com/PeterCxy/itte/pkg/store/pagination"
	"github.com/PeterCxy/itte/pkg/store/threads"
	"github.com/PeterCxy/itte/pkg/telemetry"
)

// App groups server state and components.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string

	backend   db.Backend
	codec     *pagination.Codec
	threads   *threads.Store
	lockedKey []byte

	maintenanceCancel context.CancelFunc
	srvFast           *fasthttp.Server
	addr              atomic.Value
	state             string

	bannerOut io.Writer
}

// New opens the backend and prepares the cursor codec and thread store.
// It does not start the HTTP server; call Run for that.
func New(ctx context.Context, eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	if eff.Config == nil {
		return nil, fmt.Errorf("missing effective config")
	}
	cfg := eff.Config

	telemetry.Init(cfg.Telemetry.SlowThreshold.Duration())

	if cfg.Storage.Backend == config.BackendPebble {
		if _, err := state.EnsureDirs(cfg.Server.DBPath); err != nil {
			return nil, fmt.Errorf("prepare db path: %w", err)
		}
	}

	backend, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Storage.Backend, err)
	}
	if pb, ok := backend.(*pebbledb.Backend); ok {
		if err := pb.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
			logger.Warn("pebble_metrics_register_failed", "error", err)
		}
	}

	pass, source, err := resolvePassphrase(ctx, cfg.Cursor, backend)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	codec := pagination.NewCodec(cfg.Cursor.EncryptionEnabled(), pass)
	logger.Info("cursor_codec_ready", "encrypted", codec.Encrypted(), "passphrase", source)
	logger.LogConfigSummary("storage_summary", []string{
		fmt.Sprintf("backend: %s", backend.Name()),
		fmt.Sprintf("cursor_encrypted: %t", codec.Encrypted()),
		fmt.Sprintf("cursor_passphrase: %s", source),
		fmt.Sprintf("page_size: default %d, max %s", cfg.Pagination.DefaultLimit, humanize.Comma(int64(cfg.Pagination.MaxLimit))),
		fmt.Sprintf("max_body_size: %s", cfg.Server.MaxBodySize),
	})

	a := &App{
		eff:       eff,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		backend:   backend,
		codec:     codec,
		state:     "initialized",
		bannerOut: os.Stdout,
	}

	if cfg.Cursor.LockMemory && codec.Encrypted() {
		if err := security.LockMemory(codec.Key()); err != nil {
			logger.Warn("cursor_key_mlock_failed", "error", err)
		} else {
			a.lockedKey = codec.Key()
		}
	}

	a.threads = threads.New(backend, codec,
		threads.WithLimits(cfg.Pagination.DefaultLimit, cfg.Pagination.MaxLimit))
	return a, nil
}

// Run starts maintenance and the HTTP server and blocks until ctx is
// cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	a.printBanner()

	cancel, err := maintenance.Start(ctx, a.eff.Config.Maintenance, a.backend)
	if err != nil {
		return err
	}
	a.maintenanceCancel = cancel

	errCh, err := a.startHTTP()
	if err != nil {
		return err
	}
	a.state = "running"

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.state = "shutting_down"
	err := shutdown.ShutdownApp(ctx, a.srvFast, a.maintenanceCancel, a.backend, a.lockedKey)
	if err == nil {
		a.state = "stopped"
	}
	return err
}

// Store exposes the thread store.
func (a *App) Store() *threads.Store { return a.threads }

func (a *App) versionString() string {
	v := a.version
	if v == "" {
		v = "dev"
	}
	if a.commit != "" && a.commit != "none" {
		v += " (" + a.commit + ")"
	}
	if a.buildDate != "" && a.buildDate != "unknown" {
		v += " @ " + a.buildDate
	}
	return v
}
