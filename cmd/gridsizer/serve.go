package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jgoulah/gridsizer/internal/database"
	"github.com/jgoulah/gridsizer/internal/publisher"
	"github.com/jgoulah/gridsizer/internal/server"
)

var (
	serveAddr          string
	serveRetryInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves the estimate, catalog, appliance, preset and quote endpoints. When MQTT or
Home Assistant is enabled, saved quotes are announced and failed announcements are
retried in the background.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, or :8080)")
	serveCmd.Flags().DurationVar(&serveRetryInterval, "retry-interval", time.Minute, "how often unpublished quotes are retried")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, err := cfg.BuildEngine()
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	pub, err := publisher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	addr := serveAddr
	if addr == "" {
		addr = cfg.GetListenAddr()
	}

	opts := server.Options{
		Addr:            addr,
		ShutdownTimeout: time.Duration(cfg.GetShutdownSeconds()) * time.Second,
		Catalog:         db,
		Quotes:          db,
	}
	if pub.Enabled() {
		opts.Publisher = pub
	}
	srv := server.New(eng, opts, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	if pub.Enabled() {
		g.Go(func() error {
			retryPublish(gctx, db, pub, serveRetryInterval)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// retryPublish announces quotes left unpublished until ctx is done
func retryPublish(ctx context.Context, db *database.DB, pub *publisher.Publisher, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			published, total, err := publishPending(db, pub)
			if err != nil {
				logger.Warn("retrying quote publish", zap.Error(err))
				continue
			}
			if total > 0 {
				logger.Info("retried unpublished quotes", zap.Int("published", published), zap.Int("pending", total))
			}
		}
	}
}
