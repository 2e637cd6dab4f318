// services/functions/client.go - Client for the hosted content functions
package functions

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// ErrNotConfigured is returned when no functions URL was set.
var ErrNotConfigured = errors.New("content functions are not configured")

// VideoMetadata describes one video as returned by the functions.
type VideoMetadata struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Channel      string `json:"channel"`
	Duration     string `json:"duration"`
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type Playlist struct {
	PlaylistID string          `json:"playlist_id"`
	Title      string          `json:"title"`
	Videos     []VideoMetadata `json:"videos"`
}

// StatusError carries a non-2xx response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("function returned %d: %s", e.Status, e.Body)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// FetchVideoMetadata resolves a single video id.
func (c *Client) FetchVideoMetadata(ctx context.Context, videoID string) (*VideoMetadata, error) {
	var out VideoMetadata
	if err := c.invoke(ctx, "fetch-video-metadata", map[string]string{"video_id": videoID}, &out); err != nil {
		return nil, errors.Wrapf(err, "fetch metadata for %s", videoID)
	}
	if out.VideoID == "" {
		out.VideoID = videoID
	}
	return &out, nil
}

// ImportPlaylist returns every video of a playlist in playlist order.
func (c *Client) ImportPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	var out Playlist
	if err := c.invoke(ctx, "import-playlist", map[string]string{"playlist_id": playlistID}, &out); err != nil {
		return nil, errors.Wrapf(err, "import playlist %s", playlistID)
	}
	if out.PlaylistID == "" {
		out.PlaylistID = playlistID
	}
	return &out, nil
}

func (c *Client) invoke(ctx context.Context, name string, payload, out interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+name, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "call function")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return errors.Wrap(sonic.Unmarshal(raw, out), "decode response")
}
