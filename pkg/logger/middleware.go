package logger

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// RequestIDHeader carries the request ID on HTTP requests and gRPC metadata.
const RequestIDHeader = "X-Request-ID"

// NewRequestID generates a fresh request ID.
func NewRequestID() string {
	return uuid.NewString()
}

// RequestIDInterceptor is a gRPC interceptor that adds a request ID to the context.
// An ID supplied by the caller in metadata is reused.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			// metadata keys are lowercased
			if ids := md.Get(RequestIDHeader); len(ids) > 0 {
				requestID = ids[0]
			}
		}
		if requestID == "" {
			requestID = NewRequestID()
		}

		return handler(WithRequestID(ctx, requestID), req)
	}
}
