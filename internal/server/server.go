package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AssetDocs/legacylocker/config"
	"github.com/AssetDocs/legacylocker/internal/handler"
	"github.com/AssetDocs/legacylocker/internal/middleware"
	"github.com/AssetDocs/legacylocker/internal/redis"
	"github.com/AssetDocs/legacylocker/internal/services"
	"github.com/AssetDocs/legacylocker/internal/transport/httpdto"
	"github.com/AssetDocs/legacylocker/pkg/database"
	"github.com/AssetDocs/legacylocker/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Locker   *handler.LockerHandler
	Recovery *handler.RecoveryHandler
	Scan     *handler.ScanHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, verifier *services.TokenVerifier, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	authed := middleware.AuthMiddleware(verifier)

	lockers := s.engine.Group("/v1/lockers", authed)
	{
		lockers.POST("", handlers.Locker.Create)
		lockers.GET("/me", handlers.Locker.GetOwn)
		lockers.PUT("/me/delegate", handlers.Locker.SetDelegate)
		lockers.PUT("/me/grace-period", handlers.Locker.SetGracePeriod)
		lockers.GET("/:id/recovery-key", handlers.Locker.RecoveryKey)
	}

	recovery := s.engine.Group("/v1/recovery", authed)
	{
		submit := []gin.HandlerFunc{handlers.Recovery.Submit}
		if limiter != nil {
			submit = append([]gin.HandlerFunc{middleware.SubmitRateLimitMiddleware(limiter)}, submit...)
		}
		recovery.POST("/requests", submit...)
		recovery.POST("/requests/:id/respond", handlers.Recovery.Respond)
		recovery.POST("/requests/:id/acknowledge", handlers.Recovery.Acknowledge)
		recovery.GET("/requests/active", handlers.Recovery.ActiveRequest)
		recovery.POST("/documents", handlers.Recovery.PresignDocument)
	}

	internal := s.engine.Group("/internal", middleware.InternalSecretMiddleware(s.config.InternalSecret))
	{
		internal.POST("/scan", handlers.Scan.Trigger)
	}
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
