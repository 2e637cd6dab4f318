package services

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muslimlife/logging"
	"muslimlife/services/functions"
	"muslimlife/testutil"
)

type fakeSource struct {
	videos    map[string]functions.VideoMetadata
	playlists map[string][]functions.VideoMetadata
	err       error
}

func (f *fakeSource) FetchVideoMetadata(_ context.Context, id string) (*functions.VideoMetadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.videos[id]
	if !ok {
		return nil, &functions.StatusError{Status: 404, Body: "not found"}
	}
	return &v, nil
}

func (f *fakeSource) ImportPlaylist(_ context.Context, id string) (*functions.Playlist, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &functions.Playlist{PlaylistID: id, Videos: f.playlists[id]}, nil
}

func TestContentAddVideo(t *testing.T) {
	db := testutil.NewDB(t)
	src := &fakeSource{videos: map[string]functions.VideoMetadata{
		"abc": {VideoID: "abc", Title: "Tafsir of Al-Fatiha", Channel: "Sheikh A", Duration: "12:05"},
	}}
	svc := NewContentService(db, logging.Nop(), src)
	ctx := context.Background()

	res, err := svc.AddVideo(ctx, KindLecture, "tafsir", "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	require.Len(t, res.Videos, 1)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", res.Videos[0].VideoURL)
	assert.Equal(t, 0, res.Videos[0].OrderIndex)

	res, err = svc.AddVideo(ctx, KindLecture, "tafsir", "abc")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 1, res.Skipped, "existing ids are skipped")

	lectures, err := svc.Lectures(ctx, "tafsir")
	require.NoError(t, err)
	require.Len(t, lectures, 1)
	assert.Equal(t, "Sheikh A", lectures[0].Speaker)

	_, err = svc.AddVideo(ctx, "podcast", "tafsir", "abc")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AddVideo(ctx, KindLecture, "tafsir", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AddVideo(ctx, KindLecture, "tafsir", "missing")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestContentImportPlaylistOrder(t *testing.T) {
	db := testutil.NewDB(t)
	src := &fakeSource{playlists: map[string][]functions.VideoMetadata{
		"PL1": {
			{VideoID: "r1", Title: "Surah Yasin", Channel: "Qari B"},
			{VideoID: "r2", Title: "Surah Mulk", Channel: "Qari B"},
		},
		"PL2": {
			{VideoID: "r2", Title: "Surah Mulk", Channel: "Qari B"},
			{VideoID: "r3", Title: "Surah Kahf", Channel: "Qari C", VideoURL: "https://example.com/r3"},
		},
	}}
	svc := NewContentService(db, logging.Nop(), src)
	ctx := context.Background()

	res, err := svc.ImportPlaylist(ctx, KindRecitation, "juz-amma", "PL1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)

	res, err = svc.ImportPlaylist(ctx, KindRecitation, "juz-amma", "PL2")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Skipped)

	recitations, err := svc.Recitations(ctx, "juz-amma")
	require.NoError(t, err)
	require.Len(t, recitations, 3)
	for i, r := range recitations {
		assert.Equal(t, i, r.OrderIndex)
	}
	assert.Equal(t, "r3", recitations[2].ID)
	assert.Equal(t, "https://example.com/r3", recitations[2].VideoURL)

	all, err := svc.Recitations(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.ImportPlaylist(ctx, KindRecitation, "juz-amma", "empty")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestContentUpstreamErrors(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	svc := NewContentService(db, logging.Nop(), &fakeSource{err: context.DeadlineExceeded})
	_, err := svc.AddVideo(ctx, KindLecture, "c", "x")
	assert.True(t, stderrors.Is(err, context.DeadlineExceeded))
	assert.False(t, stderrors.Is(err, ErrUnavailable))

	svc = NewContentService(db, logging.Nop(), &fakeSource{err: functions.ErrNotConfigured})
	_, err = svc.ImportPlaylist(ctx, KindLecture, "c", "PL")
	assert.ErrorIs(t, err, ErrUnavailable)
}
