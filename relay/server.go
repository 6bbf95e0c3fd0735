package relay

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fleetwatch/config"
)

// Server hosts the relay behind a gin engine: CORS for credentialed browser
// fetches, per-IP rate limiting, the proxied prefix, a health endpoint and
// optional static assets for the dispatcher page.
type Server struct {
	engine          *gin.Engine
	srv             *http.Server
	shutdownTimeout time.Duration
	log             *zap.Logger
}

// NewServer wires the relay and its middleware from configuration.
func NewServer(cfg config.AppConfig, creds CredentialStore) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogMiddleware())
	engine.Use(RateLimitMiddleware(cfg.Relay.RateLimitPerMinute))
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	rl := New(
		cfg.Upstream.BaseURL,
		cfg.Upstream.PathPrefix,
		creds,
		time.Duration(cfg.Upstream.TimeoutMS)*time.Millisecond,
		cfg.Relay.ClientCookieName,
		int(cfg.Session.DurationMS/1000),
	)
	engine.Any(cfg.Upstream.PathPrefix+"/*path", rl.Proxy)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Server.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(cfg.Server.StaticDir))
		engine.NoRoute(func(c *gin.Context) {
			fileServer.ServeHTTP(c.Writer, c.Request)
		})
	}

	return &Server{
		engine: engine,
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		shutdownTimeout: time.Duration(cfg.Server.ShutdownTimeoutMS) * time.Millisecond,
		log:             zap.L(),
	}
}

// Handler exposes the underlying engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Fatal("server error", zap.Error(err))
		}
	}()
	s.log.Info("relay listening", zap.String("addr", s.srv.Addr))
}

// HandleGracefulShutdown blocks until SIGINT/SIGTERM, then drains the
// server within the configured timeout.
func (s *Server) HandleGracefulShutdown() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	s.log.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Warn("server shutdown error", zap.Error(err))
	} else {
		s.log.Info("server shut down successfully")
	}
}
