package models

import "strings"

var htmlEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;", "&", "&amp;")

// Sanitize escapes <, > and & in a single pass. Text produced by one call is
// never rescanned by that call, so entities it emits are not escaped again.
func Sanitize(content string) string {
	return htmlEscaper.Replace(content)
}
