package pagination

const (
	// DefaultLimit is the number of comments returned when no limit is given
	DefaultLimit = 5

	// MaxLimit is the maximum number of comments returned per page
	MaxLimit = 1000

	// MaxCursorLength bounds cursors accepted from clients
	MaxCursorLength = 2048

	// nonceHexLen is the width of the hex nonce prefix of encrypted cursors
	nonceHexLen = 24
)
