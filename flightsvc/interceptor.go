package flightsvc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/flightcsv/flightcsv-server/auth"
)

// UnaryServerInterceptor enriches request metadata and, when authenticator
// is non-nil, validates the bearer token before invoking the handler. A
// nil authenticator passes every request through unauthenticated:
// authentication is plumbing to install, never a default requirement.
func UnaryServerInterceptor(authenticator auth.Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := authenticate(ctx, authenticator)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor is the streaming counterpart of
// UnaryServerInterceptor.
func StreamServerInterceptor(authenticator auth.Authenticator) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := authenticate(ss.Context(), authenticator)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})
	}
}

// authenticate enriches ctx with request metadata and, when an
// authenticator is installed, validates the caller's bearer token. Auth
// failures come back already mapped to UNAUTHENTICATED via toStatus.
func authenticate(ctx context.Context, authenticator auth.Authenticator) (context.Context, error) {
	ctx = EnrichContextMetadata(ctx)
	if authenticator == nil {
		return ctx, nil
	}

	token, err := auth.ExtractToken(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	ctx, err = auth.ValidateToken(ctx, token, authenticator)
	if err != nil {
		return nil, toStatus(err)
	}
	return ctx, nil
}

// wrappedServerStream overrides grpc.ServerStream.Context so downstream
// handlers observe the enriched/authenticated context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context { return w.ctx }
