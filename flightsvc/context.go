package flightsvc

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"
)

// contextKey is a private type for context keys to avoid collisions with
// keys set by other packages.
type contextKey int

const metaKey contextKey = iota

// Metadata header keys read by EnrichContextMetadata.
const (
	HeaderAuthorization  = "authorization"
	HeaderTraceID        = "flightcsv-trace-id"
	HeaderSessionID      = "flightcsv-session-id"
	HeaderAcceptEncoding = "flightcsv-accept-encoding"
)

// ContextMeta is the request-scoped metadata every streaming and unary
// handler except ListActions stashes on its context as its first line of
// work.
type ContextMeta struct {
	Authorization  string
	TraceID        string
	SessionID      string
	AcceptEncoding string
}

// WithContextMeta attaches meta to ctx.
func WithContextMeta(ctx context.Context, meta ContextMeta) context.Context {
	return context.WithValue(ctx, metaKey, &meta)
}

// MetaFromContext returns the ContextMeta attached by EnrichContextMetadata,
// or nil if none was attached.
func MetaFromContext(ctx context.Context) *ContextMeta {
	meta, _ := ctx.Value(metaKey).(*ContextMeta)
	return meta
}

// AuthorizationFromContext returns the raw authorization header, or "".
func AuthorizationFromContext(ctx context.Context) string {
	if meta := MetaFromContext(ctx); meta != nil {
		return meta.Authorization
	}
	return ""
}

// TraceIDFromContext returns the trace id, or "" if none was supplied and
// none was minted.
func TraceIDFromContext(ctx context.Context) string {
	if meta := MetaFromContext(ctx); meta != nil {
		return meta.TraceID
	}
	return ""
}

// SessionIDFromContext returns the session id.
func SessionIDFromContext(ctx context.Context) string {
	if meta := MetaFromContext(ctx); meta != nil {
		return meta.SessionID
	}
	return ""
}

// AcceptEncodingFromContext returns the client's declared body-encoding
// preference (the flightcsv-accept-encoding header), or "".
func AcceptEncodingFromContext(ctx context.Context) string {
	if meta := MetaFromContext(ctx); meta != nil {
		return meta.AcceptEncoding
	}
	return ""
}

// EnrichContextMetadata reads gRPC incoming metadata into a ContextMeta and
// stashes it on the context. A trace id is minted when the client didn't
// supply one, so every log line for a request can be correlated even
// across handlers that don't share a stream. Idempotent: a context already
// enriched is returned unchanged.
func EnrichContextMetadata(ctx context.Context) context.Context {
	if MetaFromContext(ctx) != nil {
		return ctx
	}

	var meta ContextMeta
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(HeaderAuthorization); len(v) > 0 {
			meta.Authorization = v[0]
		}
		if v := md.Get(HeaderTraceID); len(v) > 0 {
			meta.TraceID = v[0]
		}
		if v := md.Get(HeaderSessionID); len(v) > 0 {
			meta.SessionID = v[0]
		}
		if v := md.Get(HeaderAcceptEncoding); len(v) > 0 {
			meta.AcceptEncoding = v[0]
		}
	}
	if meta.TraceID == "" {
		meta.TraceID = uuid.NewString()
	}

	return WithContextMeta(ctx, meta)
}
