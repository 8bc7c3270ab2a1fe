package models

import (
	"errors"
	"net/http"
)

var ErrInvalidJSON = errors.New("invalid JSON object")

// client-facing reasons
const (
	ReasonInvalidJSON     = "Invalid JSON object"
	ReasonInvalidPath     = "No Valid Path Provided"
	ReasonInvalidURL      = "Invalid URL"
	ReasonInvalidSecret   = "No Valid Secret Provided"
	ReasonInvalidContent  = "No Valid Content Provided"
	ReasonInvalidUsername = "No Valid User Name Provided"
	ReasonMissingEmail    = "No E-mail Provided"
	ReasonMalformedEmail  = "Malformed E-mail"
	ReasonMissingPath     = "What Path do you want?"
	ReasonInvalidLimit    = "Invalid number"
	ReasonInvalidCursor   = "Invalid Cursor"
	ReasonInvalidEdit     = "You must specify `path`, `id`, `created_at`, `secret` and new `content`"
	ReasonNotFound        = "Original Comment Not Found"
	ReasonWrongSecret     = "Wrong Secret"
)

// RequestError is a failure caused by the request itself. Reason is the
// plain-text message shown to clients.
type RequestError struct {
	Status int
	Code   string
	Reason string
	Err    error
}

func (e *RequestError) Error() string { return e.Reason }

func (e *RequestError) Unwrap() error { return e.Err }

func badRequest(code, reason string) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Code: code, Reason: reason}
}

func InvalidJSON(err error) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Code: "invalid_json", Reason: ReasonInvalidJSON, Err: errors.Join(ErrInvalidJSON, err)}
}

func MissingPath() *RequestError { return badRequest("missing_path", ReasonMissingPath) }

func InvalidLimit(err error) *RequestError {
	e := badRequest("invalid_limit", ReasonInvalidLimit)
	e.Err = err
	return e
}

func InvalidCursor(err error) *RequestError {
	e := badRequest("invalid_cursor", ReasonInvalidCursor)
	e.Err = err
	return e
}

func InvalidEdit() *RequestError { return badRequest("invalid_edit", ReasonInvalidEdit) }

func NotFound(err error) *RequestError {
	return &RequestError{Status: http.StatusNotFound, Code: "not_found", Reason: ReasonNotFound, Err: err}
}

func WrongSecret() *RequestError {
	return &RequestError{Status: http.StatusForbidden, Code: "wrong_secret", Reason: ReasonWrongSecret}
}

// AsRequestError extracts a RequestError from err.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
