// Package vaulterr classifies failures into the kinds spec §7 maps to HTTP
// status codes, generalizing the teacher's rag/service sentinel-error
// pattern into a reusable kind enum.
package vaulterr

import "net/http"

// Kind classifies a failure for the HTTP layer.
type Kind int

const (
	KindClientInput Kind = iota
	KindUpstreamAuth
	KindUpstreamTransient
	KindStore
	KindNotFound
)

// Error wraps an underlying cause with a Kind and a short client-facing code.
type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err under kind with the given client-facing code.
func New(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

// ClientInput builds a malformed-request error.
func ClientInput(code string, err error) *Error { return New(KindClientInput, code, err) }

// Store builds a database-failure error.
func Store(err error) *Error { return New(KindStore, "db_error", err) }

// UpstreamAuth builds a provider-credential-rejected error.
func UpstreamAuth(err error) *Error {
	return New(KindUpstreamAuth, "embedding_provider_auth_error", err)
}

// UpstreamTransient builds a retry-budget-exhausted error.
func UpstreamTransient(err error) *Error {
	return New(KindUpstreamTransient, "upstream_unavailable", err)
}

// NotFound builds a missing-resource error.
func NotFound(code string) *Error { return New(KindNotFound, code, nil) }

// HTTPStatus maps a Kind to the status code spec §7 assigns it.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindClientInput:
		return http.StatusBadRequest
	case KindUpstreamAuth, KindUpstreamTransient:
		return http.StatusBadGateway
	case KindStore:
		return http.StatusInternalServerError
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
