package security

import (
	"crypto/rand"
	"io"
)

// Alphabet is the 62-symbol alphabet shared by comment ids and secrets.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	CommentIDLength = 5
	SecretLength    = 20
)

// IDSource produces random identifiers. Ids are not guaranteed unique.
type IDSource interface {
	NewID(n int) string
}

// RandomIDs draws ids from crypto/rand.
type RandomIDs struct {
	Reader io.Reader
}

// NewID returns n symbols from Alphabet. Bytes at or above the largest
// multiple of len(Alphabet) are rejected so every symbol is equally likely.
func (r RandomIDs) NewID(n int) string {
	src := r.Reader
	if src == nil {
		src = rand.Reader
	}
	const limit = 256 - 256%len(Alphabet)
	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := io.ReadFull(src, buf); err != nil {
			panic("security: random source failed: " + err.Error())
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}

// NewCommentID returns a fresh 5-symbol comment id.
func NewCommentID() string {
	return RandomIDs{}.NewID(CommentIDLength)
}
