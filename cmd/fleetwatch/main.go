package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fleetwatch/config"
	"fleetwatch/export"
	"fleetwatch/fleet"
	"fleetwatch/internal"
	"fleetwatch/relay"
	"fleetwatch/session"
	"fleetwatch/tracking"
)

func main() {
	mode := flag.String("mode", "serve", "serve|watch")
	email := flag.String("email", "", "upstream account email (watch mode)")
	password := flag.String("password", "", "upstream account password (watch mode)")
	vehiclePositions := flag.String("vehiclePositions", "", "GTFS-RT VehiclePositions URL (overrides config)")
	flag.Parse()

	internal.InitLogging()
	if err := config.LoadAppConfig(); err != nil {
		panic(err)
	}

	switch *mode {
	case "serve":
		runServe()
	case "watch":
		runWatch(*email, *password, *vehiclePositions)
	default:
		panic("unknown mode")
	}
}

func runServe() {
	cfg := config.Config
	var creds relay.CredentialStore
	if cfg.Relay.RedisAddr != "" {
		store, err := relay.NewRedisCredentialStore(
			cfg.Relay.RedisAddr, cfg.Relay.RedisPassword, cfg.Relay.RedisDB,
			time.Duration(cfg.Session.DurationMS)*time.Millisecond)
		if err != nil {
			panic(err)
		}
		creds = store
	} else {
		creds = relay.NewMemoryCredentialStore()
	}

	srv := relay.NewServer(cfg, creds)
	srv.Start()
	srv.HandleGracefulShutdown()
}

func runWatch(email, password, vehiclePositions string) {
	cfg := config.Config
	log := zap.L()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var source fleet.Source
	feedURL := cfg.GTFSRT.VehiclePositionsURL
	if vehiclePositions != "" {
		feedURL = vehiclePositions
	}
	if feedURL != "" {
		source = fleet.NewGTFSRTSource(feedURL, time.Duration(cfg.GTFSRT.TimeoutMS)*time.Millisecond)
		log.Info("using vehicle positions feed", zap.String("url", feedURL))
	} else {
		client := fleet.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.PathPrefix,
			time.Duration(cfg.Upstream.TimeoutMS)*time.Millisecond)
		store := session.NewStore(sessionKV(cfg), client,
			time.Duration(cfg.Session.DurationMS)*time.Millisecond)
		if !store.IsAuthenticated() {
			if email == "" || password == "" {
				panic("no stored session; -email and -password required")
			}
			user, err := store.Login(ctx, email, password)
			if err != nil {
				panic(err)
			}
			log.Info("logged in", zap.String("user", user.Name))
		}
		defer store.Logout(context.Background())
		source = client
	}

	engine := tracking.NewEngine(source, tracking.NewLogRenderer(), cfg.Tracking.Map)
	poller := tracking.NewPoller(engine, time.Duration(cfg.Tracking.PollIntervalMS)*time.Millisecond)
	go poller.Run(ctx)

	srv := exportServer(cfg, engine)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("export server error", zap.Error(err))
		}
	}()
	log.Info("export listening", zap.String("addr", srv.Addr))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutMS)*time.Millisecond)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("export shutdown error", zap.Error(err))
	}
}

func sessionKV(cfg config.AppConfig) session.KV {
	if cfg.Session.StorePath == "" {
		return session.NewMemoryKV()
	}
	kv, err := session.NewFileKV(cfg.Session.StorePath)
	if err != nil {
		panic(err)
	}
	return kv
}

func exportServer(cfg config.AppConfig, engine *tracking.Engine) *http.Server {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(relay.RequestLogMiddleware())
	export.NewHandler(engine, cfg).Register(r)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
