// Package httpapi wires the HTTP transport (Gin) to the content store, the
// page cache, and the page handlers. It centralizes cross-cutting concerns
// such as tracing, correlation IDs, logging, panic recovery, metrics, rate
// limiting, and the CORS posture of the feed endpoints.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/dkarlsen/go-blog-cache/internal/config"
	"github.com/dkarlsen/go-blog-cache/internal/http/handlers"
	"github.com/dkarlsen/go-blog-cache/internal/http/middleware"
	"github.com/dkarlsen/go-blog-cache/internal/pagecache"
)

// RegisterRoutes attaches all middleware and endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured request logs
//  4. Recovery: capture panics after logger
//  5. Metrics
//  6. Rate limiter (per IP)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cache *pagecache.Service, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to an HTML 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 6) Token-bucket rate limiter per IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst)
	r.Use(rl.Handler())

	// Fallbacks
	r.NoRoute(handlers.NotFound)
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	h := handlers.New(db, cache, cfg.PageSize)

	// Feed endpoints are fetched cross-origin by browser-based readers,
	// so they get CORS and gzip; the HTML pages do not need either.
	feedGroup := r.Group("/", gzip.Gzip(gzip.DefaultCompression), feedCORS(cfg.CORS))
	feedGroup.GET("/:blog/feed.xml", h.RSS)
	feedGroup.GET("/:blog/podcast.xml", h.Podcast)

	// HTML pages; canonical URLs carry a trailing slash.
	r.GET("/:blog/", h.Index)
	r.GET("/:blog/:slug/", h.Detail)
}

// feedCORS builds the CORS policy for the feed endpoints. With no origin
// allowlist configured, feeds are world-readable.
func feedCORS(cfg config.CORSConfig) gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods:  []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Accept"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = cfg.AllowedOrigins
	}
	return cors.New(conf)
}
