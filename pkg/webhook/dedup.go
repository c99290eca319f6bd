package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/goccy/go-json"
	"github.com/kasuboski/rollwatch/pkg/cache"
	"github.com/kasuboski/rollwatch/pkg/logger"
	"github.com/kasuboski/rollwatch/pkg/metrics"
)

const DefaultDedupWindow = 10 * time.Second

// Deduplicator rejects test, malformed and repeated webhook deliveries
type Deduplicator struct {
	seen   *cache.Cache[string, string]
	window time.Duration
	source string
}

type DedupOption func(*Deduplicator)

// WithDedupWindow sets how long a fingerprint blocks repeats
func WithDedupWindow(d time.Duration) DedupOption {
	return func(dd *Deduplicator) {
		dd.window = d
	}
}

// WithDedupClock overrides the clock stamping fingerprints
func WithDedupClock(now func() time.Time) DedupOption {
	return func(dd *Deduplicator) {
		dd.seen = cache.New[string, string](cache.WithClock(now))
	}
}

// WithSource labels metrics with the delivering service
func WithSource(source string) DedupOption {
	return func(dd *Deduplicator) {
		dd.source = source
	}
}

func NewDeduplicator(opts ...DedupOption) *Deduplicator {
	d := &Deduplicator{
		seen:   cache.New[string, string](),
		window: DefaultDedupWindow,
		source: "sonarr",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsWebhookProcessable reports whether a delivery should be acted on.
// Accepted fingerprints are remembered for the dedup window.
func (d *Deduplicator) IsWebhookProcessable(ctx context.Context, p Payload) bool {
	log := logger.FromCtx(ctx, "instance", p.InstanceName, "eventType", p.EventType)

	switch p.Kind {
	case KindTest:
		log.Info("ignoring test webhook")
		metrics.WebhooksTotal.WithLabelValues(d.source, metrics.OutcomeIgnored).Inc()
		return false
	case KindSeries:
		if err := p.Series.validate(); err != nil {
			log.Debugw("rejecting series webhook", "error", err)
			metrics.WebhooksTotal.WithLabelValues(d.source, metrics.OutcomeInvalid).Inc()
			return false
		}
		if p.EventType != EventTypeDownload {
			log.Debugw("ignoring non download series webhook", "show", p.Describe())
			metrics.WebhooksTotal.WithLabelValues(d.source, metrics.OutcomeIgnored).Inc()
			return false
		}
		if !p.Series.HasFile {
			log.Debugw("rejecting series webhook without file information", "show", p.Describe())
			metrics.WebhooksTotal.WithLabelValues(d.source, metrics.OutcomeInvalid).Inc()
			return false
		}
	case KindMovie:
	default:
		log.Debug("rejecting webhook of unknown shape")
		metrics.WebhooksTotal.WithLabelValues(d.source, metrics.OutcomeInvalid).Inc()
		return false
	}

	fingerprint := Fingerprint(p)
	existing, ok := d.seen.Claim(fingerprint, p.Describe(), d.window)
	if !ok {
		log.Infow("duplicate webhook", "content", existing.Value, "firstSeen", existing.StoredAt, "fingerprint", fingerprint[:12])
		metrics.WebhooksTotal.WithLabelValues(d.source, metrics.OutcomeDuplicate).Inc()
		return false
	}

	metrics.WebhooksTotal.WithLabelValues(d.source, metrics.OutcomeAccepted).Inc()
	return true
}

// Forget releases the fingerprint of a delivery so a redelivery is processed again
func (d *Deduplicator) Forget(p Payload) {
	d.seen.Delete(Fingerprint(p))
}

type fingerprintFields struct {
	InstanceName string `json:"instanceName"`
	Type         Kind   `json:"type"`
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Season       *int   `json:"season,omitempty"`
	Episode      *int   `json:"episode,omitempty"`
}

// Fingerprint hashes the identifying fields of a payload. Event type and upgrade status are
// left out so a download and its upgrade notification share a fingerprint.
func Fingerprint(p Payload) string {
	f := fingerprintFields{
		InstanceName: p.InstanceName,
		Type:         p.Kind,
	}

	switch p.Kind {
	case KindSeries:
		if p.Series.Series != nil {
			f.ID = p.Series.Series.ID
			f.Title = p.Series.Series.Title
		}
		if len(p.Series.Episodes) > 0 {
			ep := p.Series.Episodes[0]
			f.Season = &ep.SeasonNumber
			f.Episode = &ep.EpisodeNumber
		}
	case KindMovie:
		f.ID = p.Movie.Movie.ID
		f.Title = p.Movie.Movie.Title
	}

	b, _ := json.Marshal(f)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
