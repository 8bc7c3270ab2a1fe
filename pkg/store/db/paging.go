package db

import (
	"fmt"

	"github.com/PeterCxy/itte/pkg/store/pagination"
)

// ValidateLimit rejects non-positive page sizes.
func ValidateLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("list limit must be positive, got %d", limit)
	}
	return nil
}

// ResumeAfter decodes a native cursor for prefix. It returns "" for an empty
// cursor and an error wrapping pagination.ErrInvalidCursor otherwise.
func ResumeAfter(prefix, cursor string) (string, error) {
	return pagination.DecodeNativeCursor(cursor, prefix)
}

// Page trims probed keys (fetched with limit+1) to limit and fills in the
// completion flag and continuation cursor.
func Page(probed []string, limit int) ListResult {
	if len(probed) <= limit {
		return ListResult{Keys: probed, Complete: true}
	}
	keys := probed[:limit]
	return ListResult{
		Keys:   keys,
		Cursor: pagination.EncodeNativeCursor(keys[len(keys)-1]),
	}
}
