package server

import (
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcadapter "rating-user-service/internal/adapter/grpc"
	"rating-user-service/internal/adapter/grpc/middleware"
	"rating-user-service/pkg/logger"
)

// SetupGRPC creates the gRPC server that carries the health service.
// rateLimiter may be nil.
func SetupGRPC(health *grpcadapter.HealthReporter, rateLimiter *middleware.RateLimiter) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			rateLimiter.UnaryInterceptor(),
		),
	)
	healthpb.RegisterHealthServer(grpcServer, health.Server())

	return grpcServer
}
