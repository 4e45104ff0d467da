package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	ginhandler "rating-user-service/internal/adapter/gin/handler"
	ginrouter "rating-user-service/internal/adapter/gin/router"
	grpcmiddleware "rating-user-service/internal/adapter/grpc/middleware"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(
	userHandler *ginhandler.UserHandler,
	rootHandler *ginhandler.RootHandler,
	rateLimiter *grpcmiddleware.RateLimiter,
	addr string,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(userHandler, rootHandler, rateLimiter, l)

	l.Info("Gin REST API configured", zap.String("address", addr))

	// WriteTimeout leaves room for the joke upstream call.
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
