package cmd

import (
	"context"
	"fmt"

	"github.com/kasuboski/rollwatch/config"
	rhttp "github.com/kasuboski/rollwatch/pkg/http"
	"github.com/kasuboski/rollwatch/pkg/logger"
	"github.com/kasuboski/rollwatch/pkg/manager"
	"github.com/kasuboski/rollwatch/pkg/monitor"
	"github.com/kasuboski/rollwatch/pkg/plex"
	"github.com/kasuboski/rollwatch/pkg/sonarr"
	"github.com/kasuboski/rollwatch/pkg/storage"
	"github.com/kasuboski/rollwatch/pkg/storage/sqlite"
	"github.com/kasuboski/rollwatch/pkg/webhook"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func loadConfig() config.Config {
	log := logger.Get()

	cfg, err := config.New(viper.GetViper())
	if err != nil {
		log.Fatal("failed to read configurations", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	return cfg
}

func openStorage(ctx context.Context, cfg config.Config) storage.Storage {
	log := logger.Get()

	store, err := sqlite.New(ctx, cfg.Storage.FilePath)
	if err != nil {
		log.Fatal("failed to create storage connection", zap.Error(err))
	}

	if err := store.RunMigrations(ctx); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	return store
}

func newRegistry(cfg config.Config) (*sonarr.Registry, error) {
	instances := make([]sonarr.Instance, 0, len(cfg.Sonarr))
	for _, s := range cfg.Sonarr {
		opts := []rhttp.ClientOption{}
		if s.RequestsPerSecond > 0 {
			opts = append(opts, rhttp.WithRequestsPerSecond(s.RequestsPerSecond))
		}

		client, err := sonarr.NewAPIClient(rhttp.NewRateLimitedHTTPClient(opts...), s.Name, s.URL, s.APIKey)
		if err != nil {
			return nil, fmt.Errorf("sonarr instance %q: %w", s.Name, err)
		}

		instances = append(instances, sonarr.Instance{
			ID:     s.ID,
			Name:   s.Name,
			Client: client,
		})
	}

	return sonarr.NewRegistry(instances...), nil
}

// newManager wires the webhook pipeline and session monitor around the store and sonarr instances
func newManager(cfg config.Config, store storage.Storage) (manager.Manager, error) {
	registry, err := newRegistry(cfg)
	if err != nil {
		return manager.Manager{}, err
	}

	queue := webhook.NewQueue()
	upgrades := webhook.NewUpgradeTracker(queue, webhook.WithUpgradeBuffer(cfg.Webhooks.UpgradeBuffer))
	completion := webhook.NewCompletionDetector(queue, registry)
	processor := webhook.NewProcessor(queue, upgrades, completion, registry, webhook.LogNotifier{})

	var mon *monitor.Monitor
	if cfg.Plex.URL != "" {
		plexClient, err := plex.New(rhttp.NewRateLimitedHTTPClient(), cfg.Plex.URL, cfg.Plex.Token)
		if err != nil {
			return manager.Manager{}, fmt.Errorf("failed to create plex client: %w", err)
		}

		mon = monitor.New(plexClient, registry, store, monitor.NewSeenCache(), monitor.Config{
			FilterUsers:       cfg.PlexSessionMonitoring.FilterUsers,
			RemainingEpisodes: cfg.PlexSessionMonitoring.RemainingEpisodes,
		})
	}

	return manager.New(processor, mon, store, registry), nil
}
