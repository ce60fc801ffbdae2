package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"ukonnect/internal/config"
	"ukonnect/internal/database"
	"ukonnect/internal/devserver"
	jwtsvc "ukonnect/internal/pkg/jwt"
	"ukonnect/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	username := flag.String("user", "demo", "username to create")
	password := flag.String("password", "demo123", "password for the seeded user")
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

	db, err := database.Connect(cfg.Server.DSN, zl)
	if err != nil {
		zl.Fatal("db connect failed", zap.Error(err))
	}

	srv, err := devserver.New(devserver.Options{
		DB:        db,
		JWT:       jwtsvc.New(cfg.Server.JWTSecret, cfg.Server.TokenTTL),
		UploadDir: cfg.Server.UploadDir,
		Logger:    zl,
	})
	if err != nil {
		zl.Fatal("devserver init failed", zap.Error(err))
	}
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	items, err := srv.SeedEquipmentItems(ctx, devserver.DefaultEquipment)
	if err != nil {
		zl.Fatal("seed equipment failed", zap.Error(err))
	}
	for _, it := range items {
		zl.Info("equipment", zap.String("id", it.ID), zap.String("name", it.Name), zap.Int("stock", it.Total))
	}

	u, err := srv.EnsureUser(ctx, *username, *password)
	if err != nil {
		zl.Fatal("seed user failed", zap.Error(err))
	}
	zl.Info("seed completed", zap.String("username", u.Username), zap.Int64("user_id", u.ID))
}
