package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rating-user-service/internal/usecase/joke"
	"rating-user-service/pkg/logger"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RootHandler serves the greeting, joke and health endpoints.
type RootHandler struct {
	jokes joke.Usecase
	db    Pinger
	log   *zap.Logger
}

// NewRootHandler creates a new RootHandler instance
func NewRootHandler(jokes joke.Usecase, db Pinger, log *zap.Logger) *RootHandler {
	return &RootHandler{
		jokes: jokes,
		db:    db,
		log:   log,
	}
}

// Hello handles GET /
func (h *RootHandler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, []string{"hello", "world"})
}

// Receive handles POST /
func (h *RootHandler) Receive(c *gin.Context) {
	c.JSON(http.StatusOK, []string{"data", "received"})
}

// Joke handles GET /joke
func (h *RootHandler) Joke(c *gin.Context) {
	text, err := h.jokes.TennisJoke(c.Request.Context())
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("joke request failed", zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, text)
}

// Health handles GET /health
func (h *RootHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		logger.WithContext(ctx, h.log).Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
