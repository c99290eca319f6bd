package plex

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ID is an identifier Plex encodes as either a JSON string or number
type ID string

func (i *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*i = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*i = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*i = ID(n.String())
	return nil
}

func (i ID) String() string {
	return string(i)
}

type SessionUser struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
}

// Session is an active playback session
type Session struct {
	SessionKey           string       `json:"sessionKey"`
	Key                  string       `json:"key"`
	RatingKey            string       `json:"ratingKey"`
	Type                 string       `json:"type"`
	Title                string       `json:"title"`
	GrandparentTitle     string       `json:"grandparentTitle,omitempty"`
	GrandparentKey       string       `json:"grandparentKey,omitempty"`
	GrandparentRatingKey string       `json:"grandparentRatingKey,omitempty"`
	ParentIndex          int          `json:"parentIndex"`
	Index                int          `json:"index"`
	User                 *SessionUser `json:"User,omitempty"`
}

// IsEpisode reports whether the session is playing a TV episode
func (s Session) IsEpisode() bool {
	return s.Type == "episode"
}

// ShowRatingKey returns the rating key of the show the session belongs to
func (s Session) ShowRatingKey() string {
	if s.GrandparentRatingKey != "" {
		return s.GrandparentRatingKey
	}

	key := strings.TrimSuffix(s.GrandparentKey, "/")
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		return key[idx+1:]
	}
	return key
}

// UserID returns the id of the watching user, empty when the session carries no user
func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID.String()
}

// Username returns the display name of the watching user
func (s Session) Username() string {
	if s.User == nil {
		return ""
	}
	return s.User.Title
}

type SessionsResponse struct {
	MediaContainer struct {
		Size     int       `json:"size"`
		Metadata []Session `json:"Metadata"`
	} `json:"MediaContainer"`
}

type GUID struct {
	ID string `json:"id"`
}

type MetadataItem struct {
	RatingKey string `json:"ratingKey"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	GUID      string `json:"guid"`
	GUIDs     []GUID `json:"Guid"`
}

type MetadataContainer struct {
	GUID     string         `json:"guid"`
	GUIDs    []GUID         `json:"Guid"`
	Metadata []MetadataItem `json:"Metadata"`
}

type MetadataResponse struct {
	MediaContainer MetadataContainer `json:"MediaContainer"`
}

// AllGUIDs flattens every guid found in the response in document order.
// The result is never nil.
func (m *MetadataResponse) AllGUIDs() []string {
	guids := make([]string, 0)
	if m == nil {
		return guids
	}

	add := func(g string) {
		if g != "" {
			guids = append(guids, g)
		}
	}

	add(m.MediaContainer.GUID)
	for _, g := range m.MediaContainer.GUIDs {
		add(g.ID)
	}
	for _, item := range m.MediaContainer.Metadata {
		add(item.GUID)
		for _, g := range item.GUIDs {
			add(g.ID)
		}
	}

	return guids
}

func parseIndex(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
