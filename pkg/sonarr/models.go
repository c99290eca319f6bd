package sonarr

const (
	MonitorNewItemsAll  = "all"
	MonitorNewItemsNone = "none"
)

type SeasonStatistics struct {
	EpisodeFileCount  int `json:"episodeFileCount"`
	EpisodeCount      int `json:"episodeCount"`
	TotalEpisodeCount int `json:"totalEpisodeCount"`
}

type Season struct {
	SeasonNumber int               `json:"seasonNumber"`
	Monitored    bool              `json:"monitored"`
	Statistics   *SeasonStatistics `json:"statistics,omitempty"`
}

// TotalEpisodeCount returns the number of episodes Sonarr knows for the season
func (s Season) TotalEpisodeCount() int {
	if s.Statistics == nil {
		return 0
	}
	return s.Statistics.TotalEpisodeCount
}

// EpisodeFileCount returns the number of downloaded episode files for the season
func (s Season) EpisodeFileCount() int {
	if s.Statistics == nil {
		return 0
	}
	return s.Statistics.EpisodeFileCount
}

type Series struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	TvdbID          int      `json:"tvdbId"`
	ImdbID          string   `json:"imdbId,omitempty"`
	Monitored       bool     `json:"monitored"`
	MonitorNewItems string   `json:"monitorNewItems,omitempty"`
	Seasons         []Season `json:"seasons"`
}

// Season returns the season with the given number
func (s Series) Season(number int) (Season, bool) {
	for _, season := range s.Seasons {
		if season.SeasonNumber == number {
			return season, true
		}
	}
	return Season{}, false
}

// HasSeason reports whether Sonarr lists the season for the series
func (s Series) HasSeason(number int) bool {
	_, ok := s.Season(number)
	return ok
}

// MonitoringOptions toggles series level monitoring
type MonitoringOptions struct {
	Monitored       bool
	MonitorNewItems string
}

type Episode struct {
	ID            int64 `json:"id"`
	SeriesID      int64 `json:"seriesId"`
	SeasonNumber  int   `json:"seasonNumber"`
	EpisodeNumber int   `json:"episodeNumber"`
	HasFile       bool  `json:"hasFile"`
	Monitored     bool  `json:"monitored"`
}

type episodesMonitored struct {
	EpisodeIDs []int64 `json:"episodeIds"`
	Monitored  bool    `json:"monitored"`
}

type command struct {
	Name         string `json:"name"`
	SeriesID     int64  `json:"seriesId"`
	SeasonNumber int    `json:"seasonNumber"`
}
