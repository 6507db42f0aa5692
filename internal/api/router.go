// Package api exposes reports and activity records over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rshade/carbon-dashboard/internal/auth"
)

// requestIDHeader carries the request ID in and out.
const requestIDHeader = "X-Request-ID"

// NewRouter wires every route. /healthz is public; /api requires a bearer token.
func NewRouter(h *Handler, authCfg auth.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.logger))

	router.GET("/healthz", h.Health)

	api := router.Group("/api", auth.Middleware(authCfg))
	{
		api.GET("/report", h.Report)
		api.GET("/activity", h.ListActivity)
		api.PUT("/activity", h.SaveActivity)
		api.DELETE("/activity/:month", h.DeleteActivity)
		api.POST("/scope3", h.SaveScope3)
		api.POST("/calculate", h.Calculate)
		api.GET("/factors", h.Factors)
	}
	return router
}

// requestLogger assigns a request ID and logs each request once it completes.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		c.Next()

		event := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
