package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ukonnect/internal/modules/push"
	"ukonnect/internal/pkg/metrics"
	"ukonnect/internal/pkg/scope"
)

func newPushCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Manage the push token of this device",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "token [token]",
			Short: "Show the stored token, or register a new one",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := get()
				if len(args) == 1 {
					if err := a.pushTokens.OnNewToken(cmd.Context(), args[0]); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Token tersimpan")
					return nil
				}
				token, err := a.pushTokens.Token(cmd.Context())
				if err != nil {
					return err
				}
				if token == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "Belum ada token")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			},
		},
	)
	return cmd
}

// newWatchCmd runs the background loops until interrupted: activity
// liveness, outbox delivery, the push channel and the metrics endpoint.
func newWatchCmd(get func() *app) *cobra.Command {
	var noMetrics bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run background sync until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if err := a.requireLogin(); err != nil {
				return err
			}

			sc := scope.New(cmd.Context())
			defer sc.Close()

			if err := a.scheduler.Refresh(sc.Context()); err != nil {
				a.log.Warn("initial activity refresh failed", zap.Error(err))
			}

			sc.Go(func(ctx context.Context) {
				a.scheduler.Run(ctx, a.cfg.Activity.PollInterval)
			})
			sc.Go(func(ctx context.Context) {
				a.recorder.Run(ctx, a.cfg.Attendance.FlushInterval)
			})

			pushURL := a.cfg.PushURL()
			if pushURL != "" {
				listener := push.NewListener(pushURL, a.sessions, a.pushTokens, a.sink, a.log, a.cfg.Push.ReconnectDelay)
				sc.Go(listener.Run)
			}

			if !noMetrics && a.cfg.Metrics.Addr != "" {
				reg := prometheus.NewRegistry()
				if err := metrics.Register(reg); err != nil {
					return err
				}
				srv := &http.Server{
					Addr:              a.cfg.Metrics.Addr,
					Handler:           metrics.Handler(reg),
					ReadHeaderTimeout: 5 * time.Second,
				}
				sc.Go(func(ctx context.Context) {
					stop := context.AfterFunc(ctx, func() {
						shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
						defer cancel()
						_ = srv.Shutdown(shutdownCtx)
					})
					defer stop()
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						a.log.Error("metrics server failed", zap.Error(err))
					}
				})
			}

			a.log.Info("watching", zap.String("push", pushURL))
			<-sc.Context().Done()
			a.log.Info("stopping")
			return nil
		},
	}
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not serve /metrics")
	return cmd
}
