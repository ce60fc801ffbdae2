package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ukonnect/internal/config"
	"ukonnect/internal/database"
	"ukonnect/internal/devserver"
	jwtsvc "ukonnect/internal/pkg/jwt"
	"ukonnect/internal/pkg/logger"
	"ukonnect/internal/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.Server.DSN, zl)
	if err != nil {
		zl.Fatal("db connect failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		zl.Fatal("metrics register failed", zap.Error(err))
	}

	srv, err := devserver.New(devserver.Options{
		DB:        db,
		JWT:       jwtsvc.New(cfg.Server.JWTSecret, cfg.Server.TokenTTL),
		UploadDir: cfg.Server.UploadDir,
		Logger:    zl,
		Gatherer:  reg,
	})
	if err != nil {
		zl.Fatal("devserver init failed", zap.Error(err))
	}
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zl.Info("devserver listening", zap.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown failed", zap.Error(err))
	}
}
