package sonarr

import (
	"context"
	"fmt"
)

// MonitorPilotOnly leaves S01E01 as the only monitored episode of season one
func MonitorPilotOnly(ctx context.Context, client Client, seriesID int64) error {
	episodes, err := client.GetEpisodes(ctx, seriesID, 1)
	if err != nil {
		return err
	}

	var pilot, rest []int64
	for _, e := range episodes {
		switch {
		case e.EpisodeNumber == 1 && !e.Monitored:
			pilot = append(pilot, e.ID)
		case e.EpisodeNumber > 1 && e.Monitored:
			rest = append(rest, e.ID)
		}
	}

	if err := client.SetEpisodesMonitored(ctx, rest, false); err != nil {
		return fmt.Errorf("failed to unmonitor episodes after the pilot: %w", err)
	}
	if err := client.SetEpisodesMonitored(ctx, pilot, true); err != nil {
		return fmt.Errorf("failed to monitor pilot: %w", err)
	}
	return nil
}

// MonitorWholeSeason monitors every episode of a season and reports whether any had to change
func MonitorWholeSeason(ctx context.Context, client Client, seriesID int64, season int) (bool, error) {
	episodes, err := client.GetEpisodes(ctx, seriesID, season)
	if err != nil {
		return false, err
	}

	ids := make([]int64, 0)
	for _, e := range episodes {
		if !e.Monitored {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return false, nil
	}

	if err := client.SetEpisodesMonitored(ctx, ids, true); err != nil {
		return false, err
	}
	return true, nil
}
