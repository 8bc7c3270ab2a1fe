package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/PeterCxy/itte/pkg/config"
	"github.com/PeterCxy/itte/pkg/store"
	"github.com/PeterCxy/itte/pkg/store/db"
	"github.com/PeterCxy/itte/pkg/store/db/pebbledb"
)

type brokenBackend struct{ db.Backend }

func (brokenBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func memBackend(t *testing.T) *pebbledb.Backend {
	t.Helper()
	b, err := pebbledb.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func cursorCfg(pass string) config.CursorConfig {
	return config.CursorConfig{Passphrase: pass, PassphraseKey: "secret_cursor"}
}

func TestResolvePassphrasePrefersConfig(t *testing.T) {
	b := memBackend(t)
	pass, src, err := resolvePassphrase(context.Background(), cursorCfg("from-config"), b)
	require.NoError(t, err)
	assert.Equal(t, "from-config", pass)
	assert.Equal(t, passphraseConfig, src)

	_, err = b.Get(context.Background(), "secret_cursor")
	assert.ErrorIs(t, err, db.ErrNotFound, "configured passphrase is never persisted")
}

func TestResolvePassphraseGeneratesOnceThenReuses(t *testing.T) {
	b := memBackend(t)
	ctx := context.Background()

	first, src, err := resolvePassphrase(ctx, cursorCfg(""), b)
	require.NoError(t, err)
	assert.Equal(t, passphraseGenerated, src)
	assert.Len(t, first, generatedPassphraseBytes*2)

	second, src, err := resolvePassphrase(ctx, cursorCfg(""), b)
	require.NoError(t, err)
	assert.Equal(t, passphraseStored, src)
	assert.Equal(t, first, second)
}

func TestResolvePassphraseDisabled(t *testing.T) {
	off := false
	cfg := cursorCfg("")
	cfg.Encrypted = &off
	pass, src, err := resolvePassphrase(context.Background(), cfg, brokenBackend{})
	require.NoError(t, err)
	assert.Empty(t, pass)
	assert.Equal(t, passphraseDisabled, src)
}

func TestResolvePassphraseBackendError(t *testing.T) {
	_, _, err := resolvePassphrase(context.Background(), cursorCfg(""), brokenBackend{})
	assert.ErrorContains(t, err, "disk on fire")
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	eff := config.EffectiveConfigResult{Config: &config.Config{
		Storage: config.StorageConfig{Backend: config.BackendMemory},
	}}
	require.NoError(t, config.ValidateConfig(&eff))
	eff.Addr = "127.0.0.1:0"

	a, err := New(context.Background(), eff, "1.2.3", "abc", "unknown")
	require.NoError(t, err)
	a.bannerOut = io.Discard
	return a
}

func TestAppServesAndShutsDown(t *testing.T) {
	a := newTestApp(t)
	assert.True(t, a.codec.Encrypted())
	assert.Equal(t, "1.2.3 (abc)", a.versionString())

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- a.Run(ctx) }()
	require.Eventually(t, func() bool { return a.Addr() != "" }, 2*time.Second, 5*time.Millisecond)

	base := "http://" + a.Addr()
	status, body, err := fasthttp.Get(nil, base+"/healthz")
	require.NoError(t, err)
	assert.Equal(t, fasthttp.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	status, body, err = fasthttp.Get(nil, base+"/readyz")
	require.NoError(t, err)
	assert.Equal(t, fasthttp.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","version":"1.2.3"}`, string(body))

	status, body, err = fasthttp.Get(nil, base+"/comments?path=https://x/y")
	require.NoError(t, err)
	assert.Equal(t, fasthttp.StatusOK, status)
	assert.JSONEq(t, `{"ok":true,"list":[]}`, string(body))

	cancel()
	require.NoError(t, <-runErr)

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	require.NoError(t, a.Shutdown(shutdownCtx))
	assert.False(t, store.Ready(a.backend))
	assert.Equal(t, "stopped", a.state)
}
