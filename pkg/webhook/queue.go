package webhook

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kasuboski/rollwatch/pkg/machine"
	"github.com/kasuboski/rollwatch/pkg/metrics"
)

type SeasonState string

const (
	SeasonStateCollecting SeasonState = "collecting"
	SeasonStateComplete   SeasonState = "complete"
	SeasonStateNotified   SeasonState = "notified"
)

// EpisodeEvent is one accepted episode download
type EpisodeEvent struct {
	SeasonNumber  int       `json:"seasonNumber"`
	EpisodeNumber int       `json:"episodeNumber"`
	Title         string    `json:"title"`
	IsUpgrade     bool      `json:"isUpgrade"`
	ReceivedAt    time.Time `json:"receivedAt"`
}

type UpgradeRecord struct {
	Timestamp time.Time
	IsUpgrade bool
}

type SeasonEntry struct {
	Episodes        []EpisodeEvent
	FirstReceived   time.Time
	LastUpdated     time.Time
	NotifiedSeasons map[int]struct{}
	// UpgradeTracker is keyed by "season-episode"
	UpgradeTracker       map[string][]UpgradeRecord
	InstanceID           *int64
	ExpectedEpisodeCount *int
	State                SeasonState
}

func (s *SeasonEntry) Machine() *machine.StateMachine[SeasonState] {
	return machine.New(s.State,
		machine.From(SeasonStateCollecting).To(SeasonStateComplete, SeasonStateNotified),
		machine.From(SeasonStateComplete).To(SeasonStateNotified),
	)
}

func (s *SeasonEntry) distinctEpisodes() int {
	seen := make(map[int]struct{}, len(s.Episodes))
	for _, ep := range s.Episodes {
		seen[ep.EpisodeNumber] = struct{}{}
	}
	return len(seen)
}

type ShowEntry struct {
	Title    string
	SeriesID *int64
	Seasons  map[int]*SeasonEntry
}

// ShowInfo identifies the show an event belongs to
type ShowInfo struct {
	Title      string
	SeriesID   *int64
	InstanceID *int64
}

// SeasonSnapshot is a copy of a season entry safe to read without the queue lock
type SeasonSnapshot struct {
	SeriesKey            string         `json:"seriesKey"`
	Title                string         `json:"title"`
	SeriesID             *int64         `json:"seriesId,omitempty"`
	InstanceID           *int64         `json:"instanceId,omitempty"`
	Season               int            `json:"season"`
	Episodes             []EpisodeEvent `json:"episodes"`
	DistinctEpisodes     int            `json:"distinctEpisodes"`
	ExpectedEpisodeCount *int           `json:"expectedEpisodeCount,omitempty"`
	State                SeasonState    `json:"state"`
	FirstReceived        time.Time      `json:"firstReceived"`
	LastUpdated          time.Time      `json:"lastUpdated"`
}

// Queue accumulates episode events per series and season. One mutex guards every
// read-modify-write so handlers running in parallel never interleave mid update.
type Queue struct {
	mu    sync.Mutex
	shows map[string]*ShowEntry
	now   func() time.Time
}

type QueueOption func(*Queue)

// WithQueueClock overrides the time source for event timestamps
func WithQueueClock(now func() time.Time) QueueOption {
	return func(q *Queue) {
		q.now = now
	}
}

func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		shows: make(map[string]*ShowEntry),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func upgradeKey(season, episode int) string {
	return fmt.Sprintf("%d-%d", season, episode)
}

// ensureLocked returns the season entry for key, creating the show and season when absent
func (q *Queue) ensureLocked(key string, info ShowInfo, season int) (*ShowEntry, *SeasonEntry) {
	now := q.now()

	show, ok := q.shows[key]
	if !ok {
		show = &ShowEntry{
			Title:   info.Title,
			Seasons: make(map[int]*SeasonEntry),
		}
		q.shows[key] = show
		metrics.QueuedShows.Set(float64(len(q.shows)))
	}
	if show.Title == "" {
		show.Title = info.Title
	}
	if show.SeriesID == nil && info.SeriesID != nil {
		id := *info.SeriesID
		show.SeriesID = &id
	}

	entry, ok := show.Seasons[season]
	if !ok {
		entry = &SeasonEntry{
			FirstReceived:   now,
			LastUpdated:     now,
			NotifiedSeasons: make(map[int]struct{}),
			UpgradeTracker:  make(map[string][]UpgradeRecord),
			State:           SeasonStateCollecting,
		}
		show.Seasons[season] = entry
	}
	if entry.InstanceID == nil && info.InstanceID != nil {
		id := *info.InstanceID
		entry.InstanceID = &id
	}

	return show, entry
}

func (q *Queue) seasonLocked(key string, season int) (*ShowEntry, *SeasonEntry, bool) {
	show, ok := q.shows[key]
	if !ok {
		return nil, nil, false
	}
	entry, ok := show.Seasons[season]
	if !ok {
		return nil, nil, false
	}
	return show, entry, true
}

// AddEpisode appends an event to its season in arrival order
func (q *Queue) AddEpisode(key string, info ShowInfo, ev EpisodeEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, entry := q.ensureLocked(key, info, ev.SeasonNumber)
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = q.now()
	}
	entry.Episodes = append(entry.Episodes, ev)
	entry.LastUpdated = ev.ReceivedAt
}

// Season returns a snapshot of one season
func (q *Queue) Season(key string, season int) (SeasonSnapshot, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	show, entry, ok := q.seasonLocked(key, season)
	if !ok {
		return SeasonSnapshot{}, false
	}
	return snapshot(key, show, season, entry), true
}

// Show returns snapshots of every season of a show ordered by season
func (q *Queue) Show(key string) ([]SeasonSnapshot, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	show, ok := q.shows[key]
	if !ok {
		return nil, false
	}
	return showSnapshots(key, show), true
}

// Snapshot returns every queued season ordered by series key then season
func (q *Queue) Snapshot() []SeasonSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	keys := make([]string, 0, len(q.shows))
	for k := range q.shows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]SeasonSnapshot, 0)
	for _, k := range keys {
		out = append(out, showSnapshots(k, q.shows[k])...)
	}
	return out
}

func showSnapshots(key string, show *ShowEntry) []SeasonSnapshot {
	seasons := make([]int, 0, len(show.Seasons))
	for n := range show.Seasons {
		seasons = append(seasons, n)
	}
	sort.Ints(seasons)

	out := make([]SeasonSnapshot, 0, len(seasons))
	for _, n := range seasons {
		out = append(out, snapshot(key, show, n, show.Seasons[n]))
	}
	return out
}

func snapshot(key string, show *ShowEntry, season int, entry *SeasonEntry) SeasonSnapshot {
	episodes := make([]EpisodeEvent, len(entry.Episodes))
	copy(episodes, entry.Episodes)

	return SeasonSnapshot{
		SeriesKey:            key,
		Title:                show.Title,
		SeriesID:             show.SeriesID,
		InstanceID:           entry.InstanceID,
		Season:               season,
		Episodes:             episodes,
		DistinctEpisodes:     entry.distinctEpisodes(),
		ExpectedEpisodeCount: entry.ExpectedEpisodeCount,
		State:                entry.State,
		FirstReceived:        entry.FirstReceived,
		LastUpdated:          entry.LastUpdated,
	}
}

// IsNotified reports whether the season has already been announced
func (q *Queue) IsNotified(key string, season int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, entry, ok := q.seasonLocked(key, season)
	if !ok {
		return false
	}
	_, notified := entry.NotifiedSeasons[season]
	return notified
}

// MarkComplete moves a collecting season to complete. Other states are left alone.
func (q *Queue) MarkComplete(key string, season int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, entry, ok := q.seasonLocked(key, season)
	if !ok || entry.State != SeasonStateCollecting {
		return false
	}
	if err := entry.Machine().ToState(SeasonStateComplete); err != nil {
		return false
	}
	entry.State = SeasonStateComplete
	return true
}

// MarkNotified records that the season was announced. It returns false when it already was,
// so exactly one caller wins the right to notify.
func (q *Queue) MarkNotified(key string, season int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, entry, ok := q.seasonLocked(key, season)
	if !ok {
		return false
	}
	if _, notified := entry.NotifiedSeasons[season]; notified {
		return false
	}

	m := entry.Machine()
	if err := m.ToState(SeasonStateNotified); err != nil {
		return false
	}
	entry.State = m.State()
	entry.NotifiedSeasons[season] = struct{}{}
	return true
}

// DeleteSeason removes a season and the show when it was the last one
func (q *Queue) DeleteSeason(key string, season int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	show, ok := q.shows[key]
	if !ok {
		return
	}
	delete(show.Seasons, season)
	if len(show.Seasons) == 0 {
		delete(q.shows, key)
		metrics.QueuedShows.Set(float64(len(q.shows)))
	}
}

func (q *Queue) DeleteShow(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.shows, key)
	metrics.QueuedShows.Set(float64(len(q.shows)))
}

// Stale lists seasons that have not received an event within maxAge
func (q *Queue) Stale(maxAge time.Duration) []SeasonSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	out := make([]SeasonSnapshot, 0)
	for key, show := range q.shows {
		for n, entry := range show.Seasons {
			if now.Sub(entry.LastUpdated) > maxAge {
				out = append(out, snapshot(key, show, n, entry))
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SeriesKey != out[j].SeriesKey {
			return out[i].SeriesKey < out[j].SeriesKey
		}
		return out[i].Season < out[j].Season
	})
	return out
}

// Reset drops every queued show
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.shows = make(map[string]*ShowEntry)
	metrics.QueuedShows.Set(0)
}

// Len returns the number of queued shows
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.shows)
}

// linkage returns what is needed to look up the expected episode count
func (q *Queue) linkage(key string, season int) (seriesID, instanceID *int64, cached *int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	show, entry, ok := q.seasonLocked(key, season)
	if !ok {
		return nil, nil, nil
	}
	return show.SeriesID, entry.InstanceID, entry.ExpectedEpisodeCount
}

// setExpectedCount caches a count on the season. A cached count is never replaced.
func (q *Queue) setExpectedCount(key string, season int, count int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, entry, ok := q.seasonLocked(key, season)
	if !ok || entry.ExpectedEpisodeCount != nil {
		return
	}
	entry.ExpectedEpisodeCount = &count
}

// progress returns the cached expected count and the distinct episodes received
func (q *Queue) progress(key string, season int) (*int, int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, entry, ok := q.seasonLocked(key, season)
	if !ok {
		return nil, 0
	}
	return entry.ExpectedEpisodeCount, entry.distinctEpisodes()
}

// recordUpgrade appends an arrival record and drops records for the season older than window
func (q *Queue) recordUpgrade(key string, info ShowInfo, season, episode int, isUpgrade bool, window time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, entry := q.ensureLocked(key, info, season)
	now := q.now()

	k := upgradeKey(season, episode)
	entry.UpgradeTracker[k] = append(entry.UpgradeTracker[k], UpgradeRecord{Timestamp: now, IsUpgrade: isUpgrade})

	prefix := fmt.Sprintf("%d-", season)
	for k, records := range entry.UpgradeTracker {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		kept := records[:0]
		for _, r := range records {
			if now.Sub(r.Timestamp) <= window {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(entry.UpgradeTracker, k)
			continue
		}
		entry.UpgradeTracker[k] = kept
	}
}

// hasUpgrade reports whether any in-window record for the episode is an upgrade
func (q *Queue) hasUpgrade(key string, season, episode int, window time.Duration) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, entry, ok := q.seasonLocked(key, season)
	if !ok {
		return false
	}

	now := q.now()
	for _, r := range entry.UpgradeTracker[upgradeKey(season, episode)] {
		if r.IsUpgrade && now.Sub(r.Timestamp) <= window {
			return true
		}
	}
	return false
}

// deleteIfStale removes the season unless an event arrived after it went stale
func (q *Queue) deleteIfStale(key string, season int, maxAge time.Duration) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	show, entry, ok := q.seasonLocked(key, season)
	if !ok || q.now().Sub(entry.LastUpdated) <= maxAge {
		return false
	}

	delete(show.Seasons, season)
	if len(show.Seasons) == 0 {
		delete(q.shows, key)
		metrics.QueuedShows.Set(float64(len(q.shows)))
	}
	return true
}
