package webhook

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var ErrInvalidPayload = errors.New("invalid webhook payload")

// Kind discriminates the payload variants a download manager can send
type Kind string

const (
	KindSeries  Kind = "series"
	KindMovie   Kind = "movie"
	KindTest    Kind = "test"
	KindUnknown Kind = "unknown"
)

const (
	EventTypeTest     = "Test"
	EventTypeDownload = "Download"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

type SeriesInfo struct {
	ID     int64  `json:"id" validate:"required"`
	Title  string `json:"title" validate:"required"`
	TvdbID int    `json:"tvdbId"`
	ImdbID string `json:"imdbId"`
}

type EpisodeInfo struct {
	ID            int64  `json:"id"`
	SeasonNumber  int    `json:"seasonNumber" validate:"gte=0"`
	EpisodeNumber int    `json:"episodeNumber" validate:"gte=0"`
	Title         string `json:"title"`
}

type MovieInfo struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Year   int    `json:"year"`
	TmdbID int    `json:"tmdbId"`
	ImdbID string `json:"imdbId"`
}

// SeriesEvent is the series variant of a payload
type SeriesEvent struct {
	Series   *SeriesInfo   `validate:"required"`
	Episodes []EpisodeInfo `validate:"required,min=1,dive"`
	// HasFile reports whether the delivery carried episodeFile or episodeFiles
	HasFile bool
}

// MovieEvent is the movie variant of a payload
type MovieEvent struct {
	Movie   MovieInfo
	HasFile bool
}

// Payload is a decoded webhook. Exactly one of Series or Movie is set for the matching Kind.
type Payload struct {
	Kind         Kind
	InstanceName string
	EventType    string
	IsUpgrade    bool
	Series       *SeriesEvent
	Movie        *MovieEvent
}

type rawPayload struct {
	InstanceName string          `json:"instanceName"`
	EventType    string          `json:"eventType"`
	IsUpgrade    bool            `json:"isUpgrade"`
	Series       *SeriesInfo     `json:"series"`
	Episodes     []EpisodeInfo   `json:"episodes"`
	Movie        *MovieInfo      `json:"movie"`
	EpisodeFile  json.RawMessage `json:"episodeFile"`
	EpisodeFiles json.RawMessage `json:"episodeFiles"`
	MovieFile    json.RawMessage `json:"movieFile"`
}

// Decode parses a webhook body into its tagged variant
func Decode(body []byte) (Payload, error) {
	var raw rawPayload
	if err := json.Unmarshal(body, &raw); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	p := Payload{
		Kind:         KindUnknown,
		InstanceName: raw.InstanceName,
		EventType:    raw.EventType,
		IsUpgrade:    raw.IsUpgrade,
	}

	switch {
	case raw.EventType == EventTypeTest:
		p.Kind = KindTest
	case raw.Movie != nil:
		p.Kind = KindMovie
		p.Movie = &MovieEvent{
			Movie:   *raw.Movie,
			HasFile: present(raw.MovieFile),
		}
	case raw.Series != nil || len(raw.Episodes) > 0:
		p.Kind = KindSeries
		p.Series = &SeriesEvent{
			Series:   raw.Series,
			Episodes: raw.Episodes,
			HasFile:  present(raw.EpisodeFile) || present(raw.EpisodeFiles),
		}
	}

	return p, nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// Title is the show or movie title
func (p Payload) Title() string {
	switch p.Kind {
	case KindSeries:
		if p.Series.Series != nil {
			return p.Series.Series.Title
		}
	case KindMovie:
		return p.Movie.Movie.Title
	}
	return ""
}

// Describe renders a short human readable label for logs
func (p Payload) Describe() string {
	switch p.Kind {
	case KindSeries:
		if len(p.Series.Episodes) > 0 {
			ep := p.Series.Episodes[0]
			return fmt.Sprintf("%s S%02dE%02d", p.Title(), ep.SeasonNumber, ep.EpisodeNumber)
		}
		return p.Title()
	case KindMovie:
		if p.Movie.Movie.Year > 0 {
			return fmt.Sprintf("%s (%d)", p.Movie.Movie.Title, p.Movie.Movie.Year)
		}
		return p.Movie.Movie.Title
	}
	return string(p.Kind)
}

func (e *SeriesEvent) validate() error {
	if err := getValidator().Struct(e); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return nil
}
