package sonarr

import (
	"context"
	"errors"
	"fmt"

	"github.com/kasuboski/rollwatch/pkg/logger"
	"golang.org/x/text/cases"
)

var (
	ErrInstanceNotFound = errors.New("sonarr instance not found")
	ErrSeriesNotFound   = errors.New("series not found in any sonarr instance")
)

// Instance is a configured Sonarr server
type Instance struct {
	ID     int64
	Name   string
	Client Client
}

// Registry holds the configured Sonarr instances in configuration order
type Registry struct {
	instances []Instance
}

func NewRegistry(instances ...Instance) *Registry {
	return &Registry{
		instances: instances,
	}
}

// foldTitle case folds a title for comparison. A Caser holds state so one is made per call.
func foldTitle(title string) string {
	return cases.Fold().String(title)
}

// Instances returns the instances in search order
func (r *Registry) Instances() []Instance {
	out := make([]Instance, len(r.instances))
	copy(out, r.instances)
	return out
}

// Get returns the client for an instance id
func (r *Registry) Get(id int64) (Client, error) {
	for _, i := range r.instances {
		if i.ID == id {
			return i.Client, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrInstanceNotFound, id)
}

// ByName returns the instance whose name matches, ignoring case
func (r *Registry) ByName(name string) (Instance, error) {
	want := foldTitle(name)
	for _, i := range r.instances {
		if foldTitle(i.Name) == want {
			return i, nil
		}
	}
	return Instance{}, fmt.Errorf("%w: %s", ErrInstanceNotFound, name)
}

// InstanceID resolves the id of the instance a webhook named itself with
func (r *Registry) InstanceID(name string) (int64, bool) {
	instance, err := r.ByName(name)
	if err != nil {
		return 0, false
	}
	return instance.ID, true
}

// GetSeasonEpisodeCount resolves the instance and counts the episodes of a season
func (r *Registry) GetSeasonEpisodeCount(ctx context.Context, instanceID, seriesID int64, season int) (*int, error) {
	client, err := r.Get(instanceID)
	if err != nil {
		return nil, err
	}
	return client.GetSeasonEpisodeCount(ctx, seriesID, season)
}

// SeriesQuery identifies a series the way media server metadata does
type SeriesQuery struct {
	TvdbID int
	ImdbID string
	Title  string
}

// SeriesMatch is a series found in a Sonarr instance
type SeriesMatch struct {
	Series     Series
	InstanceID int64
	Client     Client
}

// FindSeries searches every instance in order and returns the first hit.
// Within an instance a series is matched by tvdb id, then imdb id, then title ignoring case.
// Instances that fail to list series are skipped.
func (r *Registry) FindSeries(ctx context.Context, query SeriesQuery) (*SeriesMatch, error) {
	log := logger.FromCtx(ctx)

	for _, instance := range r.instances {
		series, err := instance.Client.GetAllSeries(ctx)
		if err != nil {
			log.Warnw("failed to list series", "instance", instance.Name, "error", err)
			continue
		}

		if s, ok := matchSeries(series, query); ok {
			return &SeriesMatch{
				Series:     s,
				InstanceID: instance.ID,
				Client:     instance.Client,
			}, nil
		}
	}

	return nil, ErrSeriesNotFound
}

func matchSeries(series []Series, query SeriesQuery) (Series, bool) {
	if query.TvdbID > 0 {
		for _, s := range series {
			if s.TvdbID == query.TvdbID {
				return s, true
			}
		}
	}

	if query.ImdbID != "" {
		for _, s := range series {
			if s.ImdbID != "" && s.ImdbID == query.ImdbID {
				return s, true
			}
		}
	}

	if query.Title != "" {
		want := foldTitle(query.Title)
		for _, s := range series {
			if foldTitle(s.Title) == want {
				return s, true
			}
		}
	}

	return Series{}, false
}
