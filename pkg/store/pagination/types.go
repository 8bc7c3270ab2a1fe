package pagination

import "errors"

// ErrInvalidCursor marks a cursor that is malformed, truncated or fails
// authentication. It is never returned for an exhausted listing.
var ErrInvalidCursor = errors.New("invalid cursor")

// ErrInvalidLimit marks a limit query value that is not a positive integer.
var ErrInvalidLimit = errors.New("invalid limit")

type CursorPayload struct {
	LastKey string `json:"last_key"` // key of the last item returned
}
