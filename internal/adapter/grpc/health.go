package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// UserServiceName is the health service name that tracks the user store.
const UserServiceName = "rating.UserService"

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthReporter keeps the gRPC health service in line with database reachability.
type HealthReporter struct {
	server   *health.Server
	db       Pinger
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger
}

// NewHealthReporter creates a reporter probing db every interval.
func NewHealthReporter(db Pinger, interval time.Duration, log *zap.Logger) *HealthReporter {
	return &HealthReporter{
		server:   health.NewServer(),
		db:       db,
		interval: interval,
		timeout:  interval / 2,
		log:      log,
	}
}

// Server returns the health service to register on a gRPC server.
func (h *HealthReporter) Server() healthpb.HealthServer {
	return h.server
}

// Probe pings the database once and publishes the result.
func (h *HealthReporter) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := h.db.PingContext(ctx); err != nil {
		h.log.Warn("database ping failed", zap.Error(err))
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}

	h.server.SetServingStatus("", st)
	h.server.SetServingStatus(UserServiceName, st)
	return st
}

// Run probes until ctx is cancelled, then marks every service NOT_SERVING.
func (h *HealthReporter) Run(ctx context.Context) {
	h.Probe(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}
