package cmd

import (
	"context"
	"fmt"

	"github.com/kasuboski/rollwatch/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type migrationVersioner interface {
	GetMigrationVersion() (version uint, dirty bool, err error)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "apply database migrations",
	Long:  `apply the embedded database migrations and print the schema version`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		cfg := loadConfig()
		store := openStorage(ctx, cfg)
		defer store.Close()

		v, ok := store.(migrationVersioner)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return
		}

		version, dirty, err := v.GetMigrationVersion()
		if err != nil {
			log.Fatal("failed to read migration version", zap.Error(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
