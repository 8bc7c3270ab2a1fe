package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// EncodeNativeCursor builds the store-native continuation token that
// resumes a scan after lastKey.
func EncodeNativeCursor(lastKey string) string {
	b, err := json.Marshal(CursorPayload{LastKey: lastKey})
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeNativeCursor returns the key a native token resumes after. The key
// must lie inside prefix.
func DecodeNativeCursor(cursor, prefix string) (string, error) {
	if cursor == "" {
		return "", nil
	}
	data, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("%w: decode base64: %v", ErrInvalidCursor, err)
	}
	var cp CursorPayload
	if err := json.Unmarshal(data, &cp); err != nil {
		return "", fmt.Errorf("%w: decode cursor JSON: %v", ErrInvalidCursor, err)
	}
	if cp.LastKey == "" || !strings.HasPrefix(cp.LastKey, prefix) {
		return "", fmt.Errorf("%w: cursor outside scanned prefix", ErrInvalidCursor)
	}
	return cp.LastKey, nil
}
