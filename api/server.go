package api

import (
	"time"

	"transcriptdedup/deduplication"
	"transcriptdedup/fragment"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the services the HTTP handlers call into.
type Dependencies struct {
	Dedup *deduplication.Deduplicator
	// Fragment is the base configuration for /api/fragments/check; requests may override it.
	Fragment fragment.Options
	// Strategy is used when a fragment check request names none.
	Strategy string
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	// Register resource routers
	RegisterHealthRoutes(r, deps)
	RegisterFragmentRoutes(r, deps)
	RegisterDeduplicationRoutes(r, deps)
	RegisterTranscriptRoutes(r, deps)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// RegisterHealthRoutes registers the liveness endpoint.
func RegisterHealthRoutes(r *gin.Engine, deps Dependencies) {
	started := time.Now()
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "healthy",
			"strategy": deps.Strategy,
			"uptime":   time.Since(started).Round(time.Second).String(),
		})
	})
}
