package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"rating-user-service/cmd/api/di"
	"rating-user-service/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	Gin    *http.Server
	GRPC   *grpc.Server
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	return &Server{
		Config: cfg,
		Logger: l,
		Gin:    SetupGinServer(c.UserHandler, c.RootHandler, c.RateLimiter, httpAddress(cfg), l),
		GRPC:   SetupGRPC(c.Health, c.RateLimiter),
	}
}

// Start serves HTTP and gRPC until ctx is cancelled or one of them fails.
// A failure stops the other server and is returned.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", grpcAddress(s.Config))
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddress(s.Config), err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Logger.Info("gRPC server running", zap.String("address", lis.Addr().String()))
		if err := s.GRPC.Serve(lis); err != nil {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.Logger.Info("HTTP server running", zap.String("address", s.Gin.Addr))
		if err := s.Gin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	waited := make(chan struct{})
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		select {
		case <-gctx.Done():
		case <-waited:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.App.ShutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.Logger.Warn("servers did not stop cleanly", zap.Error(err))
		}
	}()

	err = g.Wait()
	close(waited)
	<-watcherDone
	return err
}

// Shutdown drains the HTTP server within ctx and stops gRPC gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	s.Logger.Info("shutting down HTTP server...")
	if err := s.Gin.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	s.Logger.Info("shutting down gRPC server...")
	stopped := make(chan struct{})
	go func() {
		s.GRPC.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.GRPC.Stop()
		errs = append(errs, fmt.Errorf("gRPC shutdown: %w", ctx.Err()))
	}

	return errors.Join(errs...)
}

func grpcAddress(cfg *config.Config) string {
	return ":" + cfg.App.GRPCPort
}

func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}
