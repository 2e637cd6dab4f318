package functions

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchVideoMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/fetch-video-metadata", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		var body map[string]string
		require.NoError(t, sonic.Unmarshal(raw, &body))
		assert.Equal(t, "abc", body["video_id"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Seerah 1","channel":"Sheikh A","duration":"45:10"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", time.Second)
	meta, err := c.FetchVideoMetadata(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", meta.VideoID, "falls back to the requested id")
	assert.Equal(t, "Seerah 1", meta.Title)
	assert.Equal(t, "45:10", meta.Duration)
}

func TestImportPlaylistStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	_, err := c.ImportPlaylist(context.Background(), "PL1")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Status)
	assert.Equal(t, "quota exceeded", se.Body)
}

func TestImportPlaylistDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"Juz Amma","videos":[{"video_id":"a"},{"video_id":"b"}]}`))
	}))
	defer srv.Close()

	pl, err := NewClient(srv.URL, "", 0).ImportPlaylist(context.Background(), "PL9")
	require.NoError(t, err)
	assert.Equal(t, "PL9", pl.PlaylistID)
	require.Len(t, pl.Videos, 2)
	assert.Equal(t, "b", pl.Videos[1].VideoID)
}

func TestNotConfigured(t *testing.T) {
	c := NewClient("", "", time.Second)
	assert.False(t, c.Configured())

	_, err := c.FetchVideoMetadata(context.Background(), "abc")
	assert.True(t, errors.Is(err, ErrNotConfigured))
}
