package keys

import (
	"fmt"
	"strconv"
	"strings"
)

type CommentKeyParts struct {
	Path      string
	CreatedAt int64
	ID        string
}

func parsePaddedInt(s string, width int) (int64, error) {
	if len(s) == 0 || len(s) > width {
		return 0, fmt.Errorf("length invalid: %s", s)
	}
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return 0, nil
	}
	return strconv.ParseInt(trimmed, 10, 64)
}

// ParseCommentKey splits a comment key from the right, so paths containing
// the delimiter still parse back to themselves.
func ParseCommentKey(key string) (*CommentKeyParts, error) {
	if !commentKeyRegexp.MatchString(key) {
		return nil, fmt.Errorf("invalid comment key format: %q", key)
	}
	rest := strings.TrimPrefix(key, CommentTag+Delimiter)

	i := strings.LastIndex(rest, Delimiter)
	id := rest[i+1:]
	rest = rest[:i]

	j := strings.LastIndex(rest, Delimiter)
	rts := rest[j+1:]
	path := rest[:j]

	rev, err := parsePaddedInt(rts, RTSPadWidth)
	if err != nil {
		return nil, fmt.Errorf("invalid reversed timestamp in %q: %w", key, err)
	}
	createdAt := MaxSafeInteger - rev
	if err := ValidateCreatedAt(createdAt); err != nil {
		return nil, err
	}
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	return &CommentKeyParts{Path: path, CreatedAt: createdAt, ID: id}, nil
}
