// Package router assembles the gin engine and runs the HTTP server.
package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/internal/interfaces/http/handlers"
	"github.com/identra/identra/pkg/logger"
)

// Router wires handlers onto a gin engine and owns the HTTP server lifecycle.
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
	log    logger.Logger

	health      *handlers.HealthHandler
	oauth       *handlers.OAuthHandler
	application *handlers.ApplicationHandler
	twoFactor   *handlers.TwoFactorHandler

	authMiddleware gin.HandlerFunc
	requestID      gin.HandlerFunc
	registry       prometheus.Gatherer

	server *http.Server
}

// New creates a Router. SetupRoutes or Start must be called before serving.
func New(
	cfg *config.Config,
	log logger.Logger,
	health *handlers.HealthHandler,
	oauth *handlers.OAuthHandler,
	application *handlers.ApplicationHandler,
	twoFactor *handlers.TwoFactorHandler,
	authMiddleware gin.HandlerFunc,
	requestID gin.HandlerFunc,
	registry prometheus.Gatherer,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	return &Router{
		engine:         gin.New(),
		cfg:            cfg,
		log:            log.WithComponent("http"),
		health:         health,
		oauth:          oauth,
		application:    application,
		twoFactor:      twoFactor,
		authMiddleware: authMiddleware,
		requestID:      requestID,
		registry:       registry,
	}
}

// SetupRoutes registers middleware and routes on the engine.
func (r *Router) SetupRoutes() {
	r.engine.Use(gin.Recovery())
	r.engine.Use(r.requestID)

	r.engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.engine.GET("/health/live", r.health.Live)
	r.engine.GET("/health/ready", r.health.Ready)

	if r.registry != nil {
		r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))
	}
	pprof.Register(r.engine)

	authed := r.engine.Group("/", r.authMiddleware)
	{
		authed.POST("/applications", r.application.Create)
		authed.POST("/oauth/authorize", r.oauth.Authorize)
		authed.POST("/2fa/provision", r.twoFactor.Provision)
		authed.POST("/2fa/verify", r.twoFactor.Verify)
	}

	// The token endpoint authenticates the client itself, not a bearer.
	r.engine.POST("/oauth/token", r.oauth.Token)

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "the requested resource was not found",
		})
	})
}

// Start runs the HTTP server until it fails or Stop is called. It blocks.
func (r *Router) Start() error {
	r.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", r.cfg.Server.Host, r.cfg.Server.Port)
	r.server = &http.Server{
		Addr:           addr,
		Handler:        r.engine,
		ReadTimeout:    time.Duration(r.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(r.cfg.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	r.log.Info(context.Background(), "http server listening", logger.Fields{"address": addr})

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down, draining in-flight requests until ctx expires.
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	r.log.Info(ctx, "stopping http server")
	return r.server.Shutdown(ctx)
}

// Engine exposes the underlying engine for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
