package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/feedstream/internal/cli"
	"github.com/aretw0/feedstream/internal/mainloop"
	httpAdapter "github.com/aretw0/feedstream/pkg/adapters/http"
	"github.com/aretw0/feedstream/pkg/observability"
	"github.com/aretw0/feedstream/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve <fixture>",
	Short: "Serve a fixture feed over HTTP",
	Long:  `Starts a session over the fixture and exposes it through the JSON inspection API, SSE events and Prometheus metrics.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}
		sessionID, _ := cmd.Flags().GetString("session")
		restore, _ := cmd.Flags().GetBool("restore")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, release, err := cli.OpenStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer release()

		diagnostics := observability.Multi{observability.NewLogger(logger)}
		var metrics http.Handler
		if cfg.HTTP.Metrics {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			diagnostics = append(diagnostics, observability.NewMetrics(reg))
			metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
		}

		events := httpAdapter.NewBroadcaster(64, logger)
		loop := mainloop.New(mainloop.WithLogger(logger))
		board := httpAdapter.NewSnackbarBoard(loop, events)
		session, err := cli.Open(ctx, cli.Options{
			Config:      cfg,
			Fixture:     args[0],
			SessionID:   sessionID,
			Restore:     restore,
			Store:       store,
			Diagnostics: diagnostics,
			Snackbar:    board,
			Listeners:   []ports.StreamContentListener{events},
			Logger:      logger,
			Loop:        loop,
		})
		if err != nil {
			return err
		}
		defer session.Close(context.Background())

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithEvents(events),
			httpAdapter.WithSnackbars(board),
		}
		if metrics != nil {
			opts = append(opts, httpAdapter.WithMetrics(metrics))
		}
		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpAdapter.NewHandler(session.Stream, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting feedstream server", "addr", srv.Addr, "session_id", session.Stream.SessionID(), "fixture", args[0])
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				return srv.Close()
			}
			logger.Info("feedstream server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides http.addr)")
	serveCmd.Flags().String("session", "", "Session id (generated when empty)")
	serveCmd.Flags().Bool("restore", false, "Restore the session from the snapshot store")
	serveCmd.Flags().String("store", "", "Snapshot store (memory, file, redis)")
	serveCmd.Flags().Duration("latency", 0, "Simulated fetch latency for tokens")
}
