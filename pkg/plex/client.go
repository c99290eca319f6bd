package plex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	rhttp "github.com/kasuboski/rollwatch/pkg/http"
	"github.com/kasuboski/rollwatch/pkg/logger"
)

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/session_source.go github.com/kasuboski/rollwatch/pkg/plex SessionSource

// SessionSource lists active playback and the metadata needed to identify the playing show
type SessionSource interface {
	GetActiveSessions(ctx context.Context) ([]Session, error)
	GetShowMetadata(ctx context.Context, ratingKey string, extended bool) (*MetadataResponse, error)
}

type Client struct {
	http    rhttp.HTTPClient
	baseURL *url.URL
	token   string
}

// New creates a Plex media server client for the server at baseURL
func New(http rhttp.HTTPClient, baseURL, token string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("plex url is required")
	}

	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid plex url: %w", err)
	}

	return &Client{
		http:    http,
		baseURL: u,
		token:   token,
	}, nil
}

// SetRequestToken authenticates a request against the media server
func SetRequestToken(token string) func(ctx context.Context, req *http.Request) error {
	return func(ctx context.Context, req *http.Request) error {
		req.Header.Set("X-Plex-Token", token)
		req.Header.Set("Accept", "application/json")
		return nil
	}
}

// GetActiveSessions returns the sessions currently playing. The result is never nil on success.
func (c *Client) GetActiveSessions(ctx context.Context) ([]Session, error) {
	var resp SessionsResponse
	if err := c.getJSON(ctx, "/status/sessions", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get active sessions: %w", err)
	}

	if resp.MediaContainer.Metadata == nil {
		return []Session{}, nil
	}

	return resp.MediaContainer.Metadata, nil
}

// GetShowMetadata returns the library metadata for a rating key. Extended requests include external guids.
func (c *Client) GetShowMetadata(ctx context.Context, ratingKey string, extended bool) (*MetadataResponse, error) {
	if ratingKey == "" {
		return nil, errors.New("rating key is required")
	}

	var query url.Values
	if extended {
		query = url.Values{}
		query.Set("includeGuids", "1")
	}

	var resp MetadataResponse
	if err := c.getJSON(ctx, "/library/metadata/"+url.PathEscape(ratingKey), query, &resp); err != nil {
		return nil, fmt.Errorf("failed to get metadata for %s: %w", ratingKey, err)
	}

	return &resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	log := logger.FromCtx(ctx)

	if c.http == nil {
		return errors.New("http client is nil")
	}

	u := *c.baseURL
	u.Path = u.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	log.Debugw("plex request", "path", u.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	if err := SetRequestToken(c.token)(ctx, req); err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status code not ok: %s", resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, dest)
}
