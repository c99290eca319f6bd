package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kasuboski/rollwatch/pkg/logger"
	"github.com/kasuboski/rollwatch/pkg/manager"
	"github.com/kasuboski/rollwatch/pkg/pagination"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rollingPage     int
	rollingPageSize int
	rollingAll      bool
)

var rollingCmd = &cobra.Command{
	Use:   "rolling",
	Short: "manage rolling monitored shows",
	Long:  `manage rolling monitored shows`,
}

var rollingListCmd = &cobra.Command{
	Use:   "list",
	Short: "list rolling monitored shows",
	Long:  `list rolling monitored shows`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, m, done := rollingManager()
		defer done()

		page, err := m.ListRollingShows(ctx, pagination.Params{Page: rollingPage, PageSize: rollingPageSize})
		if err != nil {
			logger.Get().Fatal("failed to list rolling shows", zap.Error(err))
		}

		printRollingShows(cmd.OutOrStdout(), page, time.Now())
	},
}

var rollingResetCmd = &cobra.Command{
	Use:   "reset <id>",
	Short: "reset a rolling show to season one",
	Long:  `remove per-user rows, rewind the master row to season one and unmonitor later seasons in sonarr`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		ctx, m, done := rollingManager()
		defer done()

		if err := m.ResetRollingShow(ctx, id); err != nil {
			logger.Get().Fatal("failed to reset rolling show", zap.Int64("id", id), zap.Error(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reset rolling show %d\n", id)
	},
}

var rollingDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "delete a rolling show",
	Long:  `delete a single rolling show row, or with --all every row for the same show`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		ctx, m, done := rollingManager()
		defer done()

		if rollingAll {
			deleted, err := m.DeleteAllRollingShowEntries(ctx, id)
			if err != nil {
				logger.Get().Fatal("failed to delete rolling show entries", zap.Int64("id", id), zap.Error(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d rolling show rows\n", deleted)
			return
		}

		if err := m.DeleteRollingShow(ctx, id); err != nil {
			logger.Get().Fatal("failed to delete rolling show", zap.Int64("id", id), zap.Error(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted rolling show %d\n", id)
	},
}

func rollingManager() (context.Context, manager.Manager, func()) {
	log := logger.Get()
	ctx := logger.WithCtx(context.Background(), log)

	cfg := loadConfig()
	store := openStorage(ctx, cfg)

	m, err := newManager(cfg, store)
	if err != nil {
		store.Close()
		log.Fatal("failed to create manager", zap.Error(err))
	}

	return ctx, m, func() { store.Close() }
}

func parseID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		logger.Get().Fatal("id must be a positive integer", zap.String("id", raw))
	}
	return id
}

func printRollingShows(out io.Writer, page pagination.Page[*manager.RollingShow], now time.Time) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tUSER\tTYPE\tFRONTIER\tWATCHED\tLAST SESSION\tUPDATED")

	for _, s := range page.Items {
		user := "-"
		if s.PlexUsername != nil {
			user = *s.PlexUsername
		} else if s.PlexUserID != nil {
			user = *s.PlexUserID
		}

		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\tS%02dE%02d\t%s\t%s\n",
			s.ID,
			s.Title,
			user,
			s.MonitoringType,
			s.CurrentMonitoredSeason,
			s.LastWatchedSeason,
			s.LastWatchedEpisode,
			relative(s.LastSessionDate, now),
			relative(s.UpdatedAt, now),
		)
	}
	w.Flush()

	fmt.Fprintf(out, "page %d of %d, %s shows\n", page.Meta.Page, page.Meta.TotalPages, humanize.Comma(int64(page.Meta.TotalItems)))
}

func relative(t *time.Time, now time.Time) string {
	if t == nil {
		return "never"
	}
	return humanize.RelTime(*t, now, "ago", "from now")
}

func init() {
	rollingListCmd.Flags().IntVar(&rollingPage, "page", 1, "page to show")
	rollingListCmd.Flags().IntVar(&rollingPageSize, "page-size", 0, "rows per page, 0 for all")
	rollingDeleteCmd.Flags().BoolVar(&rollingAll, "all", false, "delete every row for the show")

	rollingCmd.AddCommand(rollingListCmd, rollingResetCmd, rollingDeleteCmd)
	rootCmd.AddCommand(rollingCmd)
}
