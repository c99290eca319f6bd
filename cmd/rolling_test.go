package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/kasuboski/rollwatch/pkg/manager"
	"github.com/kasuboski/rollwatch/pkg/pagination"
	"github.com/kasuboski/rollwatch/pkg/storage"
	"github.com/stretchr/testify/assert"
)

func TestPrintRollingShows(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	watched := now.Add(-3 * time.Hour)
	updated := now.Add(-2 * 24 * time.Hour)

	page := pagination.NewPage([]*manager.RollingShow{
		{
			ID:                     1,
			Title:                  "Severance",
			MonitoringType:         storage.MonitoringTypeFirstSeasonRolling,
			CurrentMonitoredSeason: 2,
			LastWatchedSeason:      1,
			LastWatchedEpisode:     9,
			Master:                 true,
			UpdatedAt:              &updated,
			LastSessionDate:        &watched,
		},
		{
			ID:                     2,
			Title:                  "Severance",
			MonitoringType:         storage.MonitoringTypePilotRolling,
			CurrentMonitoredSeason: 1,
			PlexUsername:           func() *string { s := "alice"; return &s }(),
		},
	}, pagination.Params{Page: 1}, 2)

	var out bytes.Buffer
	printRollingShows(&out, page, now)

	got := out.String()
	assert.Contains(t, got, "S01E09")
	assert.Contains(t, got, "3 hours ago")
	assert.Contains(t, got, "2 days ago")
	assert.Contains(t, got, "alice")
	assert.Contains(t, got, "never")
	assert.Contains(t, got, "page 1 of 1, 2 shows")
}
