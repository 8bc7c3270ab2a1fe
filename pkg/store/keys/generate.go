package keys

import (
	"fmt"
)

// GenCommentKey builds the storage key of a comment. Ascending key order
// within one thread is descending created_at order.
func GenCommentKey(path string, createdAt int64, id string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}
	if err := ValidateCreatedAt(createdAt); err != nil {
		return "", err
	}
	if err := ValidateCommentID(id); err != nil {
		return "", err
	}
	return fmt.Sprintf(CommentKey, path, ReverseTS(createdAt), id), nil
}

// GenCommentPrefix returns the scan prefix covering the comments of path.
func GenCommentPrefix(path string) string {
	return fmt.Sprintf(CommentPrefix, path)
}

// ReverseTS renders MaxSafeInteger - createdAt at a fixed width.
func ReverseTS(createdAt int64) string {
	return PadTS(MaxSafeInteger - createdAt)
}

func PadTS(ts int64) string {
	return fmt.Sprintf("%0*d", RTSPadWidth, ts)
}

// NextPrefix returns the smallest key greater than every key starting with
// prefix, or nil when no such bound exists.
func NextPrefix(prefix []byte) []byte {
	next := make([]byte, len(prefix))
	copy(next, prefix)
	for i := len(next) - 1; i >= 0; i-- {
		if next[i] < 0xff {
			next[i]++
			return next[:i+1]
		}
	}
	return nil
}
