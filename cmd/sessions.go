package cmd

import (
	"context"
	"fmt"

	"github.com/kasuboski/rollwatch/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "work with plex playback sessions",
	Long:  `work with plex playback sessions`,
}

var sessionsMonitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "run one session monitor pass",
	Long:  `check the active plex sessions once and trigger any searches or rolling updates they call for`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		cfg := loadConfig()
		store := openStorage(ctx, cfg)
		defer store.Close()

		m, err := newManager(cfg, store)
		if err != nil {
			log.Fatal("failed to create manager", zap.Error(err))
		}

		result := m.MonitorSessions(ctx)
		fmt.Fprintln(cmd.OutOrStdout(), result.String())
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsMonitorCmd)
	rootCmd.AddCommand(sessionsCmd)
}
