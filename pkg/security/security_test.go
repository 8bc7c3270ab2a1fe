package security

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDUsesAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		id := NewCommentID()
		require.Len(t, id, CommentIDLength)
		for _, r := range id {
			if !strings.ContainsRune(Alphabet, r) {
				t.Fatalf("id %q contains %q outside alphabet", id, r)
			}
		}
	}
	assert.Len(t, NewSecret(), SecretLength)
}

func TestNewIDRejectsBiasedBytes(t *testing.T) {
	// 248..255 must be skipped; 0 maps to 'A', 61 to '9'
	src := bytes.NewReader([]byte{255, 248, 0, 61, 250, 62, 0, 0, 0, 0})
	id := RandomIDs{Reader: src}.NewID(3)
	assert.Equal(t, "A9A", id)
}

func TestVerifySecret(t *testing.T) {
	assert.True(t, VerifySecret("s1", "s1"))
	assert.False(t, VerifySecret("s1", "s2"))
	assert.False(t, VerifySecret("s1", "s1 "))
	assert.False(t, VerifySecret("s1", ""))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := DeriveKey("passphrase")
	require.Len(t, key, KeySize)

	ct, err := EncryptWithRawKey(key, []byte("hello"))
	require.NoError(t, err)
	pt, err := DecryptWithRawKey(key, ct)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(pt))

	ct[len(ct)-1] ^= 0x01
	_, err = DecryptWithRawKey(key, ct)
	assert.Error(t, err)

	_, err = DecryptWithRawKey(key, ct[:NonceSize])
	assert.ErrorIs(t, err, ErrCiphertextTooShort)

	_, err = DecryptWithRawKey(DeriveKey("other"), ct)
	assert.Error(t, err)
}

func TestWipe(t *testing.T) {
	b := []byte{1, 2, 3}
	Wipe(b)
	assert.Equal(t, []byte{0, 0, 0}, b)
}
