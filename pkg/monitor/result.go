package monitor

import (
	"fmt"
	"strings"
)

type RollingAction string

const (
	RollingActionExpanded      RollingAction = "expanded"
	RollingActionMonitorAll    RollingAction = "monitorAll"
	RollingActionPilotExpanded RollingAction = "pilotExpanded"
)

// RollingUpdate records a change to a rolling show's frontier
type RollingUpdate struct {
	ShowTitle    string        `json:"showTitle"`
	PlexUsername string        `json:"plexUsername,omitempty"`
	Action       RollingAction `json:"action"`
	Season       int           `json:"season"`
}

func (u RollingUpdate) String() string {
	title := u.ShowTitle
	if u.PlexUsername != "" {
		title = fmt.Sprintf("%s (%s)", u.ShowTitle, u.PlexUsername)
	}

	switch u.Action {
	case RollingActionExpanded:
		return fmt.Sprintf("%s: expanded monitoring to season %d", title, u.Season)
	case RollingActionMonitorAll:
		return fmt.Sprintf("%s: switched to monitor all after season %d", title, u.Season)
	case RollingActionPilotExpanded:
		return fmt.Sprintf("%s: monitoring all of season %d after the pilot", title, u.Season)
	}
	return fmt.Sprintf("%s: %s season %d", title, u.Action, u.Season)
}

// Result summarizes one pass over the active sessions
type Result struct {
	ProcessedSessions int             `json:"processedSessions"`
	TriggeredSearches int             `json:"triggeredSearches"`
	RollingUpdates    []RollingUpdate `json:"rollingUpdates"`
	Errors            []string        `json:"errors"`
}

func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "processed %d sessions, triggered %d searches", r.ProcessedSessions, r.TriggeredSearches)
	for _, u := range r.RollingUpdates {
		b.WriteString("\n")
		b.WriteString(u.String())
	}
	for _, e := range r.Errors {
		b.WriteString("\nerror: ")
		b.WriteString(e)
	}
	return b.String()
}
