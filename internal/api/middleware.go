package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/observability"
)

// RequestIDMiddleware adds a request ID to each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header("X-Request-ID", requestID)

		ctx := context.WithValue(c.Request.Context(), observability.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequestLogger creates a middleware that logs each request and records
// its metrics
func RequestLogger(logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Route template keeps metric cardinality bounded; unmatched
		// requests fall back to the raw path.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.APIRequest(
			c.Request.Context(),
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
