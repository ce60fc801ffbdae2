package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"ukonnect/internal/config"
	"ukonnect/internal/database"
	"ukonnect/internal/modules/attendance"
	"ukonnect/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	retention := flag.Duration("retention", 30*24*time.Hour, "keep delivered rows younger than this")
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

	db, err := database.Connect(cfg.Store.DSN, zl)
	if err != nil {
		zl.Fatal("db connect failed", zap.Error(err))
	}

	outbox, err := attendance.NewOutbox(db)
	if err != nil {
		zl.Fatal("outbox init failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := outbox.PruneDelivered(ctx, time.Now().Add(-*retention))
	if err != nil {
		zl.Fatal("cleanup attendance_outbox failed", zap.Error(err))
	}
	pending, err := outbox.PendingCount(ctx)
	if err != nil {
		zl.Fatal("count pending failed", zap.Error(err))
	}

	zl.Info("outbox cleanup completed", zap.Int64("pruned", n), zap.Int64("pending", pending))
}
