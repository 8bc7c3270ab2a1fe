package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func body(t *testing.T, fields map[string]any) []byte {
	t.Helper()
	b, err := json.Marshal(fields)
	require.NoError(t, err)
	return b
}

func validCreate() map[string]any {
	return map[string]any{
		"path":     "https://x/y",
		"secret":   "s1",
		"content":  "Hello",
		"username": "Bob",
		"email":    "b@x.com",
	}
}

func TestParseCreateValid(t *testing.T) {
	in, err := ParseCreate(body(t, validCreate()))
	require.NoError(t, err)
	assert.Equal(t, CreateInput{Path: "https://x/y", Secret: "s1", Content: "Hello", Username: "Bob", Email: "b@x.com"}, in)
}

func TestParseCreateReasons(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
		reason string
	}{
		{"path missing", func(m map[string]any) { delete(m, "path") }, ReasonInvalidPath},
		{"path not string", func(m map[string]any) { m["path"] = 42 }, ReasonInvalidPath},
		{"path too long", func(m map[string]any) { m["path"] = "https://x/" + strings.Repeat("a", 245) }, ReasonInvalidPath},
		{"path not url", func(m map[string]any) { m["path"] = "not a url" }, ReasonInvalidURL},
		{"secret missing", func(m map[string]any) { delete(m, "secret") }, ReasonInvalidSecret},
		{"secret too long", func(m map[string]any) { m["secret"] = strings.Repeat("s", 255) }, ReasonInvalidSecret},
		{"content too short", func(m map[string]any) { m["content"] = "ab" }, ReasonInvalidContent},
		{"content too long", func(m map[string]any) { m["content"] = strings.Repeat("c", 1024) }, ReasonInvalidContent},
		{"username empty", func(m map[string]any) { m["username"] = "" }, ReasonInvalidUsername},
		{"username too long", func(m map[string]any) { m["username"] = strings.Repeat("u", 32) }, ReasonInvalidUsername},
		{"email empty", func(m map[string]any) { m["email"] = "" }, ReasonMissingEmail},
		{"email malformed", func(m map[string]any) { m["email"] = "no-at-sign" }, ReasonMalformedEmail},
		// earlier fields win when several are wrong
		{"secret before content", func(m map[string]any) { m["secret"] = true; m["content"] = "" }, ReasonInvalidSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validCreate()
			tt.mutate(m)
			_, err := ParseCreate(body(t, m))
			re, ok := AsRequestError(err)
			require.True(t, ok, "expected RequestError, got %v", err)
			assert.Equal(t, tt.reason, re.Reason)
			assert.Equal(t, http.StatusBadRequest, re.Status)
		})
	}
}

func TestParseCreateContentBoundaries(t *testing.T) {
	for _, n := range []int{3, 1023} {
		m := validCreate()
		m["content"] = strings.Repeat("c", n)
		_, err := ParseCreate(body(t, m))
		assert.NoError(t, err, "length %d", n)
	}
	for _, n := range []int{2, 1024} {
		m := validCreate()
		m["content"] = strings.Repeat("c", n)
		_, err := ParseCreate(body(t, m))
		assert.Error(t, err, "length %d", n)
	}
}

func TestParseCreateInvalidJSON(t *testing.T) {
	for _, in := range []string{"", "{", "null", "[]", `"str"`, `{"path":"x"} trailing`} {
		_, err := ParseCreate([]byte(in))
		re, ok := AsRequestError(err)
		require.True(t, ok, "input %q", in)
		assert.Equal(t, ReasonInvalidJSON, re.Reason, "input %q", in)
		assert.True(t, errors.Is(err, ErrInvalidJSON), "input %q", in)
	}
}

func TestEmailPattern(t *testing.T) {
	for _, ok := range []string{"b@x.com", "Bob@Example.ORG", "a.b+c@sub.example.co", `"quoted"@x.io`, "u@[127.0.0.1]"} {
		assert.True(t, emailPattern.MatchString(ok), ok)
	}
	for _, bad := range []string{"plain", "@x.com", "a@", "a@-x"} {
		assert.False(t, emailPattern.MatchString(bad), bad)
	}
}

func validEdit() map[string]any {
	return map[string]any{
		"path":       "https://x/y",
		"id":         "abcde",
		"created_at": 1700000000000,
		"secret":     "s1",
		"content":    "Hi there",
	}
}

func TestParseEdit(t *testing.T) {
	in, err := ParseEdit(body(t, validEdit()))
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), in.CreatedAt)
	assert.Equal(t, "Hi there", in.Content)

	// no lower bound on edit content beyond being present
	m := validEdit()
	m["content"] = "x"
	_, err = ParseEdit(body(t, m))
	assert.NoError(t, err)

	m = validEdit()
	m["content"] = strings.Repeat("c", 1023)
	_, err = ParseEdit(body(t, m))
	assert.NoError(t, err)
}

func TestParseEditRejects(t *testing.T) {
	mutations := map[string]func(m map[string]any){
		"content 1024":        func(m map[string]any) { m["content"] = strings.Repeat("c", 1024) },
		"content empty":       func(m map[string]any) { m["content"] = "" },
		"created_at string":   func(m map[string]any) { m["created_at"] = "1700000000000" },
		"created_at zero":     func(m map[string]any) { m["created_at"] = 0 },
		"created_at fraction": func(m map[string]any) { m["created_at"] = 1.5 },
		"id missing":          func(m map[string]any) { delete(m, "id") },
		"secret number":       func(m map[string]any) { m["secret"] = 1 },
		"path missing":        func(m map[string]any) { delete(m, "path") },
	}
	for name, mutate := range mutations {
		m := validEdit()
		mutate(m)
		_, err := ParseEdit(body(t, m))
		re, ok := AsRequestError(err)
		require.True(t, ok, name)
		assert.Equal(t, ReasonInvalidEdit, re.Reason, name)
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a&lt;b&gt;c&amp;d", Sanitize("a<b>c&d"))
	assert.Equal(t, "&amp;lt;", Sanitize("&lt;"))
	assert.Equal(t, "plain", Sanitize("plain"))
}

func TestPublicProjectionDropsSecrets(t *testing.T) {
	c := Comment{Path: "https://x/y", ID: "abcde", CreatedAt: 1, Content: "Hello", Username: "Bob", Email: "b@x.com", Secret: "s1"}
	b, err := json.Marshal(c.Public())
	require.NoError(t, err)
	s := string(b)
	assert.NotContains(t, s, "secret")
	assert.NotContains(t, s, "email")
	assert.NotContains(t, s, "b@x.com")
	assert.NotContains(t, s, "edited")

	c.Edited = true
	b, err = json.Marshal(c.Public())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"edited":true`)
}

func TestRequestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", InvalidCursor(inner))
	re, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonInvalidCursor, re.Error())
	assert.ErrorIs(t, err, inner)
}
