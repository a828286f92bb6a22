package auth

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc/metadata"
)

type contextKey int

const identityKey contextKey = iota

// bearerPrefix is the only authorization scheme this server understands.
const bearerPrefix = "Bearer "

// WithIdentity attaches an authenticated identity to ctx. Called by the
// dispatcher's interceptors after token validation succeeds.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated identity, or "" for an
// unauthenticated request.
func IdentityFromContext(ctx context.Context) string {
	identity, _ := ctx.Value(identityKey).(string)
	return identity
}

// ExtractToken reads the bearer token from gRPC incoming metadata. A
// missing header is not an error (token == ""); a header that is present
// but malformed is ErrInvalidAuthHeader, and an empty Bearer token is
// ErrTokenEmpty. Callers map these to UNAUTHENTICATED at the gRPC
// boundary.
func ExtractToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil
	}

	headers := md.Get("authorization")
	if len(headers) == 0 {
		return "", nil
	}

	header := headers[0]
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}
	token := strings.TrimPrefix(header, bearerPrefix)
	if token == "" {
		return "", ErrTokenEmpty
	}
	return token, nil
}

// ValidateToken runs token through authenticator and returns a context
// carrying the resulting identity. A missing or rejected token yields an
// error wrapping ErrUnauthenticated.
func ValidateToken(ctx context.Context, token string, authenticator Authenticator) (context.Context, error) {
	if token == "" {
		return ctx, fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}

	identity, err := authenticator.Authenticate(ctx, token)
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return WithIdentity(ctx, identity), nil
}
