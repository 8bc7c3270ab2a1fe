package keys

const (
	// notation dictionary for key formats:
	// comment = namespace tag for persisted comment records
	// <path>  = thread path, an absolute URL (may itself contain ":")
	// <rts>   = reversed time key, MaxSafeInteger - created_at
	// <id>    = comment id, [A-Za-z0-9]
	// Segments are separated by ":"; <rts> and <id> never contain it.

	// primary storage key format
	CommentKey    = "comment:%s:%s:%s" // comment:<path>:<rts>:<id>
	CommentPrefix = "comment:%s:"      // comment:<path>:

	// namespace tag and delimiter
	CommentTag = "comment"
	Delimiter  = ":"

	// MaxSafeInteger is the largest integer exactly representable in an IEEE
	// double; created_at values are subtracted from it.
	MaxSafeInteger int64 = 9007199254740991

	// padding width (fixed for lexicographic ordering). Equals the digit
	// count of MaxSafeInteger so that every reversed key realistic today is
	// byte-identical to its unpadded rendering.
	RTSPadWidth = 16 // e.g. %016d

	// field bounds shared with the comment model
	MaxPathLength = 254
	IDLength      = 5
)
