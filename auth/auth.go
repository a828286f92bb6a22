// Package auth carries the server's authentication plumbing: a pluggable
// Authenticator, bearer-token extraction from gRPC metadata, and identity
// propagation through the request context.
//
// Nothing in the dispatcher requires a valid token unless an
// Authenticator is installed on the server config; the concrete
// credential format is left to the caller's validation function.
package auth

import (
	"context"
	"errors"
)

var (
	// ErrInvalidAuthHeader: the authorization header is present but not
	// of the form "Bearer <token>".
	ErrInvalidAuthHeader = errors.New("authorization header must use Bearer scheme")

	// ErrTokenEmpty: the Bearer scheme was used with an empty token.
	ErrTokenEmpty = errors.New("bearer token is empty")

	// ErrUnauthenticated: the installed Authenticator rejected the token.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Authenticator validates a bearer token and reports the caller's
// identity. Implementations must be safe for concurrent use; the context
// carries any deadline a validation backend should respect.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity string, err error)
}

// NoAuth returns an Authenticator that admits every request as
// "anonymous". Intended for development and tests.
func NoAuth() Authenticator {
	return allowAll{}
}

type allowAll struct{}

func (allowAll) Authenticate(context.Context, string) (string, error) {
	return "anonymous", nil
}

// BearerAuth adapts a plain token-validation function into an
// Authenticator. The function returns the caller's identity for a valid
// token and an error otherwise; the error surfaces to the client as
// UNAUTHENTICATED.
func BearerAuth(validate func(token string) (identity string, err error)) Authenticator {
	return bearerAuth{validate: validate}
}

type bearerAuth struct {
	validate func(string) (string, error)
}

func (b bearerAuth) Authenticate(_ context.Context, token string) (string, error) {
	return b.validate(token)
}
