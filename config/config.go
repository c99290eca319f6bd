package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server                Server                `json:"server" yaml:"server" mapstructure:"server"`
	Storage               Storage               `json:"storage" yaml:"storage" mapstructure:"storage"`
	Plex                  Plex                  `json:"plex" yaml:"plex" mapstructure:"plex"`
	Sonarr                []Sonarr              `json:"sonarr" yaml:"sonarr" mapstructure:"sonarr" validate:"dive"`
	PlexSessionMonitoring PlexSessionMonitoring `json:"plexSessionMonitoring" yaml:"plexSessionMonitoring" mapstructure:"plexSessionMonitoring"`
	Webhooks              Webhooks              `json:"webhooks" yaml:"webhooks" mapstructure:"webhooks"`
	Rolling               Rolling               `json:"rolling" yaml:"rolling" mapstructure:"rolling"`
}

type Server struct {
	Port int `json:"port" yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
}

// Storage configuration is assumed to be for sqlite database only currently
type Storage struct {
	FilePath string `json:"filePath" yaml:"filePath" mapstructure:"filePath"`
}

type Plex struct {
	URL   string `json:"url" yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	Token string `json:"token" yaml:"token" mapstructure:"token"`
}

// Sonarr is one Sonarr instance. Instances are searched in the order they are listed.
type Sonarr struct {
	ID                int64   `json:"id" yaml:"id" mapstructure:"id" validate:"gt=0"`
	Name              string  `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	URL               string  `json:"url" yaml:"url" mapstructure:"url" validate:"required,url"`
	APIKey            string  `json:"apiKey" yaml:"apiKey" mapstructure:"apiKey" validate:"required"`
	RequestsPerSecond float64 `json:"requestsPerSecond" yaml:"requestsPerSecond" mapstructure:"requestsPerSecond" validate:"gte=0"`
}

type PlexSessionMonitoring struct {
	Enabled           bool          `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Interval          time.Duration `json:"interval" yaml:"interval" mapstructure:"interval" validate:"gte=0"`
	FilterUsers       []string      `json:"filterUsers" yaml:"filterUsers" mapstructure:"filterUsers"`
	RemainingEpisodes int           `json:"remainingEpisodes" yaml:"remainingEpisodes" mapstructure:"remainingEpisodes" validate:"gte=0"`
}

// Webhooks tunes webhook intake. RetryInterval and MaxAge are reported for the
// downstream consumer and are not acted on here.
type Webhooks struct {
	UpgradeBuffer   time.Duration `json:"upgradeBuffer" yaml:"upgradeBuffer" mapstructure:"upgradeBuffer" validate:"gte=0"`
	QueueMaxAge     time.Duration `json:"queueMaxAge" yaml:"queueMaxAge" mapstructure:"queueMaxAge" validate:"gte=0"`
	RetryInterval   time.Duration `json:"retryInterval" yaml:"retryInterval" mapstructure:"retryInterval"`
	MaxAge          time.Duration `json:"maxAge" yaml:"maxAge" mapstructure:"maxAge"`
	CleanupInterval time.Duration `json:"cleanupInterval" yaml:"cleanupInterval" mapstructure:"cleanupInterval" validate:"gte=0"`
}

type Rolling struct {
	InactivityDays  int           `json:"inactivityDays" yaml:"inactivityDays" mapstructure:"inactivityDays" validate:"gte=0"`
	CleanupInterval time.Duration `json:"cleanupInterval" yaml:"cleanupInterval" mapstructure:"cleanupInterval" validate:"gte=0"`
}

// Inactivity is how long a rolling show may go without playback before it is reset
func (r Rolling) Inactivity() time.Duration {
	return time.Duration(r.InactivityDays) * 24 * time.Hour
}

type ConfigUnmarshaler interface {
	ReadInConfig() error
	Unmarshal(any, ...viper.DecoderConfigOption) error
	ConfigFileUsed() string
}

// New reads a new configuration
func New(cu ConfigUnmarshaler) (Config, error) {
	var c Config

	if cu.ConfigFileUsed() != "" {
		err := cu.ReadInConfig()
		if err != nil {
			return c, err
		}
	}

	err := cu.Unmarshal(&c)
	return c, err
}

// Validate checks field constraints and that Sonarr instance ids and names are unique
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ids := make(map[int64]struct{}, len(c.Sonarr))
	names := make(map[string]struct{}, len(c.Sonarr))
	for _, s := range c.Sonarr {
		if _, ok := ids[s.ID]; ok {
			return fmt.Errorf("invalid config: duplicate sonarr id %d", s.ID)
		}
		if _, ok := names[s.Name]; ok {
			return fmt.Errorf("invalid config: duplicate sonarr name %q", s.Name)
		}
		ids[s.ID] = struct{}{}
		names[s.Name] = struct{}{}
	}

	return nil
}
