package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"rating-user-service/api"
	"rating-user-service/internal/adapter/gin/handler"
	"rating-user-service/internal/adapter/gin/middleware"
	grpcmiddleware "rating-user-service/internal/adapter/grpc/middleware"
)

// SetupRouter configures and returns a Gin router with all routes and middleware.
// rateLimiter may be nil.
func SetupRouter(
	userHandler *handler.UserHandler,
	rootHandler *handler.RootHandler,
	rateLimiter *grpcmiddleware.RateLimiter,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()
	// Both /users and /users/ are served directly instead of redirecting.
	router.RedirectTrailingSlash = false

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))

	router.GET("/health", rootHandler.Health)
	router.GET("/swagger/*any", swagger())

	limited := router.Group("/")
	limited.Use(middleware.RateLimiter(rateLimiter, log))
	{
		limited.GET("/", rootHandler.Hello)
		limited.POST("/", rootHandler.Receive)
		limited.GET("/joke", rootHandler.Joke)

		for _, path := range []string{"/users", "/users/"} {
			limited.POST(path, userHandler.CreateUser)
			limited.GET(path, userHandler.ListUsers)
		}
	}

	return router
}

// swagger serves the embedded OpenAPI document and the UI that renders it.
func swagger() gin.HandlerFunc {
	ui := httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))
	return func(c *gin.Context) {
		if c.Param("any") == "/doc.json" {
			c.Data(http.StatusOK, "application/json; charset=utf-8", api.OpenAPI)
			return
		}
		ui.ServeHTTP(c.Writer, c.Request)
	}
}
