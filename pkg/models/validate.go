package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/PeterCxy/itte/pkg/store/keys"
)

// Field bounds, in bytes.
const (
	MaxPathLength     = keys.MaxPathLength
	MaxSecretLength   = 254
	MinContentLength  = 3
	MaxContentLength  = 1023
	MaxUsernameLength = 31
	MaxEmailLength    = 254
)

// emailPattern is a permissive RFC 5322 address grammar, matched unanchored.
var emailPattern = regexp.MustCompile(`(?i)(?:[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*|"(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21\x23-\x5b\x5d-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])*")@(?:(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?|\[(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?|[a-z0-9-]*[a-z0-9]:(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21-\x5a\x53-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])+)\])`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("bytemin", byteBound(func(n, p int) bool { return n >= p })))
	must(v.RegisterValidation("bytemax", byteBound(func(n, p int) bool { return n <= p })))
	must(v.RegisterValidation("rfc5322", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}))
	return v
}

func byteBound(ok func(n, p int) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		p, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return ok(len(fl.Field().String()), p)
	}
}

func byteRange(min, max int) string {
	return "bytemin=" + strconv.Itoa(min) + ",bytemax=" + strconv.Itoa(max)
}

type fieldRule struct {
	field  string
	tag    string
	code   string
	reason string
}

// createRules run in order; the first failing rule decides the reason.
var createRules = []fieldRule{
	{field: "path", tag: byteRange(1, MaxPathLength), code: "invalid_path", reason: ReasonInvalidPath},
	{field: "path", tag: "url", code: "invalid_url", reason: ReasonInvalidURL},
	{field: "secret", tag: byteRange(1, MaxSecretLength), code: "invalid_secret", reason: ReasonInvalidSecret},
	{field: "content", tag: byteRange(MinContentLength, MaxContentLength), code: "invalid_content", reason: ReasonInvalidContent},
	{field: "username", tag: byteRange(1, MaxUsernameLength), code: "invalid_username", reason: ReasonInvalidUsername},
	{field: "email", tag: byteRange(1, MaxEmailLength), code: "missing_email", reason: ReasonMissingEmail},
	{field: "email", tag: "rfc5322", code: "malformed_email", reason: ReasonMalformedEmail},
}

// editRules only bound content from above.
var editRules = []fieldRule{
	{field: "path", tag: byteRange(1, MaxPathLength)},
	{field: "id", tag: "bytemin=1"},
	{field: "secret", tag: byteRange(1, MaxSecretLength)},
	{field: "content", tag: byteRange(1, MaxContentLength)},
}

// CreateInput is a validated post body.
type CreateInput struct {
	Path     string
	Secret   string
	Content  string
	Username string
	Email    string
}

// EditInput is a validated edit body.
type EditInput struct {
	Path      string
	ID        string
	CreatedAt int64
	Secret    string
	Content   string
}

// ParseCreate decodes and validates a post body, stopping at the first
// failing field.
func ParseCreate(body []byte) (CreateInput, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return CreateInput{}, InvalidJSON(err)
	}
	for _, r := range createRules {
		s, ok := fields[r.field].(string)
		if !ok || validate.Var(s, r.tag) != nil {
			return CreateInput{}, badRequest(r.code, r.reason)
		}
	}
	return CreateInput{
		Path:     fields["path"].(string),
		Secret:   fields["secret"].(string),
		Content:  fields["content"].(string),
		Username: fields["username"].(string),
		Email:    fields["email"].(string),
	}, nil
}

// ParseEdit decodes and validates an edit body. Every field failure maps to
// the same reason so callers cannot probe which field was wrong.
func ParseEdit(body []byte) (EditInput, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return EditInput{}, InvalidJSON(err)
	}
	for _, r := range editRules {
		s, ok := fields[r.field].(string)
		if !ok || validate.Var(s, r.tag) != nil {
			return EditInput{}, InvalidEdit()
		}
	}
	createdAt, ok := integralNumber(fields["created_at"])
	if !ok || createdAt <= 0 || createdAt > keys.MaxSafeInteger {
		return EditInput{}, InvalidEdit()
	}
	return EditInput{
		Path:      fields["path"].(string),
		ID:        fields["id"].(string),
		CreatedAt: createdAt,
		Secret:    fields["secret"].(string),
		Content:   fields["content"].(string),
	}, nil
}

// ValidateStoredContent checks the bound of sanitized content on create.
func ValidateStoredContent(content string) error {
	if validate.Var(content, byteRange(MinContentLength, MaxContentLength)) != nil {
		return badRequest("invalid_content", ReasonInvalidContent)
	}
	return nil
}

// ValidateEditedContent checks the bound of sanitized content on edit.
func ValidateEditedContent(content string) error {
	if validate.Var(content, "bytemax="+strconv.Itoa(MaxContentLength)) != nil {
		return InvalidEdit()
	}
	return nil
}

func decodeObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("body is not an object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after object")
	}
	return fields, nil
}

func integralNumber(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > float64(keys.MaxSafeInteger) {
		return 0, false
	}
	return int64(f), true
}
