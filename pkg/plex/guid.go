package plex

import (
	"regexp"
	"strings"
)

var (
	tvdbPattern = regexp.MustCompile(`^tvdb://(\d+)`)
	imdbPattern = regexp.MustCompile(`^imdb://?(tt\d+)`)
	tmdbPattern = regexp.MustCompile(`^tmdb://(\d+)`)

	legacyAgents = map[string]string{
		"com.plexapp.agents.thetvdb":    "tvdb",
		"com.plexapp.agents.tvdb":       "tvdb",
		"com.plexapp.agents.imdb":       "imdb",
		"com.plexapp.agents.themoviedb": "tmdb",
		"com.plexapp.agents.tmdb":       "tmdb",
	}
)

// ParseGUIDs normalizes guids into the "<source>://<id>" form.
// Legacy agent guids lose their path and query, empty values are dropped and duplicates removed.
func ParseGUIDs(guids []string) []string {
	parsed := make([]string, 0, len(guids))
	seen := make(map[string]struct{}, len(guids))

	for _, raw := range guids {
		g := normalizeGUID(raw)
		if g == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		parsed = append(parsed, g)
	}

	return parsed
}

func normalizeGUID(raw string) string {
	g := strings.TrimSpace(raw)
	if g == "" {
		return ""
	}

	scheme, rest, ok := strings.Cut(g, "://")
	if !ok {
		return ""
	}

	if source, legacy := legacyAgents[strings.ToLower(scheme)]; legacy {
		scheme = source
		rest, _, _ = strings.Cut(rest, "?")
		rest, _, _ = strings.Cut(rest, "/")
	}

	if rest == "" {
		return ""
	}

	return strings.ToLower(scheme) + "://" + rest
}

// ExtractTvdbID returns the first tvdb id found in guids, or 0 when there is none
func ExtractTvdbID(guids []string) int {
	for _, g := range ParseGUIDs(guids) {
		if m := tvdbPattern.FindStringSubmatch(g); len(m) > 1 {
			if id, ok := parseIndex(m[1]); ok {
				return id
			}
		}
	}
	return 0
}

// ExtractImdbID returns the first imdb id found in guids, or "" when there is none
func ExtractImdbID(guids []string) string {
	for _, g := range ParseGUIDs(guids) {
		if m := imdbPattern.FindStringSubmatch(g); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// ExtractTmdbID returns the first tmdb id found in guids, or 0 when there is none
func ExtractTmdbID(guids []string) int {
	for _, g := range ParseGUIDs(guids) {
		if m := tmdbPattern.FindStringSubmatch(g); len(m) > 1 {
			if id, ok := parseIndex(m[1]); ok {
				return id
			}
		}
	}
	return 0
}
