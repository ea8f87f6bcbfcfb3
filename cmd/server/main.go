package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voiceflow/cms/api"
	"github.com/voiceflow/cms/auth"
	"github.com/voiceflow/cms/internal/config"
	"github.com/voiceflow/cms/internal/slogging"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := slogging.Initialize(slogging.Config{
		Level:            slogging.ParseLogLevel(cfg.Logging.Level),
		IsDev:            cfg.Logging.IsDev,
		LogDir:           cfg.Logging.LogDir,
		MaxAgeDays:       cfg.Logging.MaxAgeDays,
		MaxSizeMB:        cfg.Logging.MaxSizeMB,
		MaxBackups:       cfg.Logging.MaxBackups,
		AlsoLogToConsole: cfg.Logging.AlsoLogToConsole,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	logger := slogging.Get()
	defer func() {
		_ = logger.Close()
	}()

	authService, err := auth.NewService(auth.Config{
		JWTSecret:         cfg.Auth.JWT.Secret,
		ExpirationSeconds: cfg.Auth.JWT.ExpirationSeconds,
	})
	if err != nil {
		logger.Error("Failed to create auth service: %v", err)
		os.Exit(1)
	}

	server := api.NewServer(cfg, authService,
		api.NewInMemoryContentStore(), api.NewInMemoryWorkspaceStore())

	if !cfg.Logging.IsDev {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(slogging.Recoverer())
	router.Use(slogging.LoggerMiddleware())
	server.RegisterHandlers(router)

	httpServer := &http.Server{
		Addr:         cfg.Server.Interface + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
}
