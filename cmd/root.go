package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rollwatch",
	Short: "rollwatch cli",
	Long:  `rollwatch follows sonarr downloads and plex playback to roll season monitoring forward`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
}

const (
	defaultSessionInterval   = time.Minute * 5
	defaultUpgradeBuffer     = time.Minute * 2
	defaultQueueMaxAge       = time.Hour * 6
	defaultWebhookCleanup    = time.Minute * 10
	defaultRollingCleanup    = time.Hour * 24
	defaultInactivityDays    = 30
	defaultRemainingEpisodes = 2
)

func initConfig() {
	if _, err := os.Stat(cfgFile); err == nil {
		viper.SetConfigFile(cfgFile)
	}

	viper.SetEnvPrefix("ROLLWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8080)

	viper.SetDefault("storage.filePath", "rollwatch.sqlite")

	viper.SetDefault("plex.url", "")
	viper.SetDefault("plex.token", "")

	viper.SetDefault("plexSessionMonitoring.enabled", false)
	viper.SetDefault("plexSessionMonitoring.interval", defaultSessionInterval)
	viper.SetDefault("plexSessionMonitoring.filterUsers", []string{})
	viper.SetDefault("plexSessionMonitoring.remainingEpisodes", defaultRemainingEpisodes)

	viper.SetDefault("webhooks.upgradeBuffer", defaultUpgradeBuffer)
	viper.SetDefault("webhooks.queueMaxAge", defaultQueueMaxAge)
	viper.SetDefault("webhooks.retryInterval", time.Minute)
	viper.SetDefault("webhooks.maxAge", time.Hour*24)
	viper.SetDefault("webhooks.cleanupInterval", defaultWebhookCleanup)

	viper.SetDefault("rolling.inactivityDays", defaultInactivityDays)
	viper.SetDefault("rolling.cleanupInterval", defaultRollingCleanup)
}
