package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"ukonnect/internal/api"
	"ukonnect/internal/config"
	"ukonnect/internal/database"
	"ukonnect/internal/modules/activity"
	"ukonnect/internal/modules/attendance"
	"ukonnect/internal/modules/auth"
	"ukonnect/internal/modules/gallery"
	"ukonnect/internal/modules/loan"
	"ukonnect/internal/modules/push"
	"ukonnect/internal/notify"
	"ukonnect/internal/pkg/logger"
	"ukonnect/internal/session"
	"ukonnect/internal/store"
)

var errNotLoggedIn = errors.New("belum login, jalankan `ukonnect login` terlebih dahulu")

// app holds every manager wired against one config. Commands build it once
// in PersistentPreRunE and close it afterwards.
type app struct {
	cfg  *config.Config
	log  *zap.Logger
	sink notify.Sink

	kv       store.KV
	sessions *session.Manager
	client   *api.Client

	auth       *auth.Service
	ledger     *loan.Ledger
	scheduler  *activity.Scheduler
	gallery    *gallery.Manager
	recorder   *attendance.Recorder
	pushTokens *push.TokenManager
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.Store.DSN, zl)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}
	kv, err := store.Open(cfg.Store, db)
	if err != nil {
		return nil, err
	}
	outbox, err := attendance.NewOutbox(db)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(kv, zl)
	if err := sessions.Init(ctx); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	client, err := api.NewClient(cfg.API.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithTokenSource(sessions),
		api.WithUnauthorizedHook(sessions.Invalidate),
		api.WithLogger(zl),
	)
	if err != nil {
		return nil, err
	}

	sink := notify.NewLogSink(zl)
	return &app{
		cfg:      cfg,
		log:      zl,
		sink:     sink,
		kv:       kv,
		sessions: sessions,
		client:   client,
		auth:     auth.NewService(client, sessions, zl),
		ledger:   loan.NewLedger(client, zl),
		scheduler: activity.NewScheduler(client, sink, zl,
			activity.WithRefreshInterval(cfg.Activity.RefreshInterval),
		),
		gallery: gallery.NewManager(client, client.BaseURL(), sink, zl,
			gallery.WithBackoffUnit(cfg.Gallery.BackoffUnit),
			gallery.WithMaxAttempts(cfg.Gallery.MaxAttempts),
		),
		recorder:   attendance.NewRecorder(client, outbox, sink, zl),
		pushTokens: push.NewTokenManager(client, kv, zl),
	}, nil
}

func (a *app) requireLogin() error {
	if a.sessions.Current().IsZero() {
		return errNotLoggedIn
	}
	return nil
}

func (a *app) Close() {
	_ = a.sessions.Close()
	if err := a.kv.Close(); err != nil {
		a.log.Warn("close store", zap.Error(err))
	}
	_ = a.log.Sync()
}
