// Package server exposes the sessions over a JSON HTTP API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ncheta/ncheta/internal/export"
	"github.com/ncheta/ncheta/internal/generation"
	"github.com/ncheta/ncheta/internal/observable"
	"github.com/ncheta/ncheta/internal/session"
	"github.com/ncheta/ncheta/internal/settings"
)

type EntryExporter interface {
	Export(ctx context.Context, id string, formats ...export.Format) ([]string, error)
}

type BackupWriter interface {
	WriteFile(ctx context.Context, dir string) (string, error)
}

// Dependencies are the components served by the router. Exporter and Backup may be nil.
type Dependencies struct {
	Repository session.EntryRepository
	Generation generation.Client
	Settings   settings.Store
	Auth       session.Authenticator
	Paywall    session.Paywall
	Premium    session.PremiumStatus
	Exporter   EntryExporter
	Backup     BackupWriter
	// APIKey defaults to the key stored in Settings.
	APIKey observable.Observable[string]

	BackupDirectory string
	AllowedOrigins  []string
	PracticeIdleTTL time.Duration

	Registry *prometheus.Registry
}

// Handler serves the API. It owns the long-lived sessions shared by requests.
type Handler struct {
	deps     Dependencies
	ctx      context.Context
	metrics  *Metrics
	entries  *session.EntryListSession
	practice *practiceSessions
}

// NewHandler creates the handler. ctx bounds the lifetime of every session it opens.
func NewHandler(ctx context.Context, deps Dependencies) *Handler {
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if deps.APIKey == nil {
		deps.APIKey = deps.Settings.APIKey()
	}
	if deps.PracticeIdleTTL <= 0 {
		deps.PracticeIdleTTL = time.Hour
	}
	metrics := NewMetrics(deps.Registry)
	return &Handler{
		deps:     deps,
		ctx:      ctx,
		metrics:  metrics,
		entries:  session.NewEntryListSession(ctx, deps.Repository, deps.Premium),
		practice: newPracticeSessions(ctx, deps.Repository, deps.PracticeIdleTTL, metrics.PracticeSessions),
	}
}

// Close closes every session opened by the handler.
func (h *Handler) Close() {
	h.practice.closeAll()
	h.entries.Close()
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), corsMiddleware(h.deps.AllowedOrigins), h.metrics.middleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.deps.Registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	{
		entries := v1.Group("/entries")
		{
			entries.GET("", h.listEntries)
			entries.GET("/:id", h.getEntry)
			entries.DELETE("/:id", h.deleteEntry)
			if h.deps.Exporter != nil {
				entries.POST("/:id/export", h.exportEntry)
			}
		}
		v1.POST("/sync", h.syncEntries)
		if h.deps.Backup != nil {
			v1.POST("/backup", h.writeBackup)
		}

		input := v1.Group("/input")
		{
			input.POST("/document", h.loadDocument)
			input.POST("/image", h.extractTextFromImage)
			input.POST("/audio", h.transcribeAudio)
		}
		v1.POST("/generate", h.generate)

		practice := v1.Group("/practice")
		{
			practice.POST("", h.startPractice)
			practice.GET("/:sessionId", h.getPractice)
			practice.POST("/:sessionId/actions", h.practiceAction)
			practice.DELETE("/:sessionId", h.closePractice)
		}

		authGroup := v1.Group("/auth")
		{
			authGroup.GET("/me", h.currentUser)
			authGroup.POST("/signup", h.signUp)
			authGroup.POST("/signin", h.signIn)
			authGroup.POST("/google", h.signInWithGoogle)
			authGroup.POST("/apple", h.signInWithApple)
			authGroup.POST("/signout", h.signOut)
		}

		settingsGroup := v1.Group("/settings")
		{
			settingsGroup.GET("", h.getSettings)
			settingsGroup.PUT("/api-key", h.saveAPIKey)
			settingsGroup.DELETE("/api-key", h.clearAPIKey)
			settingsGroup.POST("/onboarding", h.completeOnboarding)
		}

		paywall := v1.Group("/paywall")
		{
			paywall.GET("", h.getPaywall)
			paywall.POST("/purchase", h.purchase)
			paywall.POST("/restore", h.restore)
		}
	}
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Default().Debug("handled request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (slices.Contains(allowedOrigins, origin) || slices.Contains(allowedOrigins, "*")) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
