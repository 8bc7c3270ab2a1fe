package pagination

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/PeterCxy/itte/pkg/security"
)

// Codec wraps store-native cursors for transport to clients. With
// encryption on, tokens are sealed with AES-256-GCM under SHA-256 of the
// passphrase and rendered as hex(nonce) followed by URL-safe base64 of the
// ciphertext and tag. With encryption off, tokens pass through unchanged.
type Codec struct {
	encrypted bool
	key       []byte
}

// NewCodec builds a cursor codec. The passphrase is ignored when encrypted
// is false.
func NewCodec(encrypted bool, passphrase string) *Codec {
	c := &Codec{encrypted: encrypted}
	if encrypted {
		c.key = security.DeriveKey(passphrase)
	}
	return c
}

func (c *Codec) Encrypted() bool { return c.encrypted }

// Key exposes the derived key so callers can lock or wipe it.
func (c *Codec) Key() []byte { return c.key }

// Encode wraps a store-native token. Empty tokens encode to "".
func (c *Codec) Encode(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	if !c.encrypted {
		return token, nil
	}
	sealed, err := security.EncryptWithRawKey(c.key, []byte(token))
	if err != nil {
		return "", fmt.Errorf("encrypt cursor: %w", err)
	}
	nonce := sealed[:security.NonceSize]
	ct := sealed[security.NonceSize:]
	return hex.EncodeToString(nonce) + toURLSafe(base64.StdEncoding.EncodeToString(ct)), nil
}

// Decode unwraps a client cursor. Every failure wraps ErrInvalidCursor.
func (c *Codec) Decode(cursor string) (string, error) {
	if err := validateCursor(cursor); err != nil {
		return "", err
	}
	if !c.encrypted {
		return cursor, nil
	}
	if len(cursor) <= nonceHexLen {
		return "", fmt.Errorf("%w: truncated", ErrInvalidCursor)
	}
	nonce, err := hex.DecodeString(cursor[:nonceHexLen])
	if err != nil {
		return "", fmt.Errorf("%w: nonce: %v", ErrInvalidCursor, err)
	}
	ct, err := base64.StdEncoding.DecodeString(fromURLSafe(cursor[nonceHexLen:]))
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext: %v", ErrInvalidCursor, err)
	}
	pt, err := security.DecryptWithRawKey(c.key, append(nonce, ct...))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return string(pt), nil
}

func validateCursor(cursor string) error {
	if cursor == "" {
		return fmt.Errorf("%w: empty", ErrInvalidCursor)
	}
	if len(cursor) > MaxCursorLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidCursor, MaxCursorLength)
	}
	return nil
}

var (
	urlSafe   = strings.NewReplacer("+", "-", "/", "_")
	urlUnsafe = strings.NewReplacer("-", "+", "_", "/")
)

func toURLSafe(s string) string   { return urlSafe.Replace(s) }
func fromURLSafe(s string) string { return urlUnsafe.Replace(s) }
