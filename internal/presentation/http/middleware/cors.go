package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/quotebuilder-api/internal/config"
)

var (
	devOrigins = []string{"http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:3000"}

	defaultMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

	// requiredHeaders are always allowed whatever the configuration says
	requiredHeaders = []string{"Authorization", "Content-Type", IdempotencyKeyHeader}

	// exposedHeaders lets a browser read the download filename and the
	// replay and throttling signals.
	exposedHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Content-Disposition",
		"Retry-After",
		"X-Request-ID",
		"X-RateLimit-Limit",
		"X-RateLimit-Remaining",
		IdempotencyReplayedHeader,
	}
)

// CORSMiddleware builds the CORS policy for the quote frontend
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = devOrigins
	}
	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = defaultMethods
	}

	headers := append([]string{"Accept", "Origin", "X-Request-ID"}, cfg.AllowedHeaders...)
	for _, h := range requiredHeaders {
		if !slices.Contains(headers, h) {
			headers = append(headers, h)
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     methods,
		AllowHeaders:     headers,
		ExposeHeaders:    exposedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
