package keys

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	idRegexp         = regexp.MustCompile(`^[A-Za-z0-9]{1,64}$`)
	commentKeyRegexp = regexp.MustCompile(`^comment:.+:[0-9]{1,16}:[A-Za-z0-9]{1,64}$`)
)

func ValidatePath(path string) error {
	if path == "" {
		return errors.New("path empty")
	}
	if len(path) > MaxPathLength {
		return fmt.Errorf("path longer than %d bytes", MaxPathLength)
	}
	return nil
}

func ValidateCreatedAt(ts int64) error {
	if ts < 0 || ts > MaxSafeInteger {
		return fmt.Errorf("created_at out of range: %d", ts)
	}
	return nil
}

// ValidateCommentID accepts ids from the comment alphabet. Length is not
// pinned to IDLength so ids from another generator keep working.
func ValidateCommentID(id string) error {
	if id == "" {
		return errors.New("comment id empty")
	}
	if !idRegexp.MatchString(id) {
		return fmt.Errorf("invalid comment id: %q", id)
	}
	return nil
}
