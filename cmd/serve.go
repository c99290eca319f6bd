package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kasuboski/rollwatch/pkg/logger"
	"github.com/kasuboski/rollwatch/pkg/manager"
	"github.com/kasuboski/rollwatch/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the webhook and api server",
	Long:  `start the webhook and api server along with the periodic session monitor and cleanup jobs`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logger.WithCtx(ctx, log)

		cfg := loadConfig()
		store := openStorage(ctx, cfg)
		defer store.Close()

		m, err := newManager(cfg, store)
		if err != nil {
			log.Fatal("failed to create manager", zap.Error(err))
		}

		if cfg.PlexSessionMonitoring.Enabled && cfg.Plex.URL == "" {
			log.Warn("plex session monitoring is enabled but no plex url is configured")
		}

		scheduler := manager.NewScheduler(m, cfg)
		srv := server.New(log, m)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return scheduler.Run(ctx)
		})
		g.Go(func() error {
			return srv.Serve(ctx, cfg.Server.Port)
		})

		if err := g.Wait(); err != nil {
			log.Error("server stopped", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
