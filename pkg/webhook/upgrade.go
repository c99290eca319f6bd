package webhook

import (
	"context"
	"time"

	"github.com/kasuboski/rollwatch/pkg/logger"
	"github.com/kasuboski/rollwatch/pkg/metrics"
)

const (
	DefaultUpgradeBuffer   = 2 * time.Minute
	DefaultUpgradeDebounce = 500 * time.Millisecond
)

// UpgradeTracker tells first downloads apart from quality upgrades that arrive in bursts
type UpgradeTracker struct {
	queue    *Queue
	window   time.Duration
	debounce time.Duration
}

type UpgradeOption func(*UpgradeTracker)

// WithUpgradeBuffer sets how long arrival records are kept
func WithUpgradeBuffer(d time.Duration) UpgradeOption {
	return func(u *UpgradeTracker) {
		if d > 0 {
			u.window = d
		}
	}
}

// WithDebounce sets how long a check waits for sibling deliveries
func WithDebounce(d time.Duration) UpgradeOption {
	return func(u *UpgradeTracker) {
		u.debounce = d
	}
}

func NewUpgradeTracker(queue *Queue, opts ...UpgradeOption) *UpgradeTracker {
	u := &UpgradeTracker{
		queue:    queue,
		window:   DefaultUpgradeBuffer,
		debounce: DefaultUpgradeDebounce,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CheckForUpgrade records an arrival for the episode, waits out the debounce and then
// reports whether any arrival inside the buffer window was flagged as an upgrade.
// The wait is a plain sleep; a third delivery does not extend it.
func (u *UpgradeTracker) CheckForUpgrade(ctx context.Context, seriesKey, title string, season, episode int, isUpgrade bool, instanceID *int64) (bool, error) {
	u.queue.recordUpgrade(seriesKey, ShowInfo{Title: title, InstanceID: instanceID}, season, episode, isUpgrade, u.window)

	if u.debounce > 0 {
		timer := time.NewTimer(u.debounce)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
	}

	upgrade := u.queue.hasUpgrade(seriesKey, season, episode, u.window)
	if upgrade {
		logger.FromCtx(ctx).Debugw("episode classified as upgrade", "show", title, "season", season, "episode", episode)
		metrics.UpgradesDetectedTotal.Inc()
	}
	return upgrade, nil
}
