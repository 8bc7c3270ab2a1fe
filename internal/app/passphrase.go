package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/PeterCxy/itte/pkg/config"
	"github.com/PeterCxy/itte/pkg/logger"
	"github.com/PeterCxy/itte/pkg/store/db"
)

const generatedPassphraseBytes = 32

// Passphrase sources reported in logs.
const (
	passphraseDisabled  = "disabled"
	passphraseConfig    = "config"
	passphraseStored    = "stored"
	passphraseGenerated = "generated"
)

// resolvePassphrase picks the cursor passphrase: configured value first,
// then the one persisted in the backend, else a fresh random one that is
// written back so cursors survive restarts.
func resolvePassphrase(ctx context.Context, cfg config.CursorConfig, backend db.Backend) (string, string, error) {
	if !cfg.EncryptionEnabled() {
		return "", passphraseDisabled, nil
	}
	if cfg.Passphrase != "" {
		return cfg.Passphrase, passphraseConfig, nil
	}

	v, err := backend.Get(ctx, cfg.PassphraseKey)
	switch {
	case err == nil && len(v) > 0:
		return string(v), passphraseStored, nil
	case err != nil && !db.IsNotFound(err):
		return "", "", fmt.Errorf("read cursor passphrase %q: %w", cfg.PassphraseKey, err)
	}

	buf := make([]byte, generatedPassphraseBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate cursor passphrase: %w", err)
	}
	pass := hex.EncodeToString(buf)
	if err := backend.Put(ctx, cfg.PassphraseKey, []byte(pass)); err != nil {
		return "", "", fmt.Errorf("store cursor passphrase %q: %w", cfg.PassphraseKey, err)
	}
	logger.Info("cursor_passphrase_generated", "key", cfg.PassphraseKey)
	return pass, passphraseGenerated, nil
}
