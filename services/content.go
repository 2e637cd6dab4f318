// services/content.go - Lectures and recitations, including admin imports
package services

import (
	"context"
	stderrors "errors"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"muslimlife/models"
	"muslimlife/services/functions"
)

type ContentKind string

const (
	KindLecture    ContentKind = "lecture"
	KindRecitation ContentKind = "recitation"
)

func (k ContentKind) Valid() bool {
	return k == KindLecture || k == KindRecitation
}

// VideoSource is the remote metadata lookup used by admin imports.
type VideoSource interface {
	FetchVideoMetadata(ctx context.Context, videoID string) (*functions.VideoMetadata, error)
	ImportPlaylist(ctx context.Context, playlistID string) (*functions.Playlist, error)
}

type ContentService struct {
	db     *gorm.DB
	log    *zap.SugaredLogger
	source VideoSource
}

func NewContentService(db *gorm.DB, log *zap.SugaredLogger, source VideoSource) *ContentService {
	return &ContentService{db: db, log: log, source: source}
}

type ImportResult struct {
	Kind     ContentKind    `json:"kind"`
	Imported int            `json:"imported"`
	Skipped  int            `json:"skipped"`
	Videos   []models.Video `json:"videos"`
}

// AddVideo fetches one video's metadata and stores it at the end of its
// category.
func (s *ContentService) AddVideo(ctx context.Context, kind ContentKind, categoryID, videoID string) (*ImportResult, error) {
	if !kind.Valid() {
		return nil, invalid("unknown content kind %q", kind)
	}
	if videoID == "" {
		return nil, invalid("video id is required")
	}
	meta, err := s.source.FetchVideoMetadata(ctx, videoID)
	if err != nil {
		return nil, upstream(err)
	}
	return s.store(ctx, kind, categoryID, []functions.VideoMetadata{*meta})
}

// ImportPlaylist stores every playlist video with increasing order_index.
func (s *ContentService) ImportPlaylist(ctx context.Context, kind ContentKind, categoryID, playlistID string) (*ImportResult, error) {
	if !kind.Valid() {
		return nil, invalid("unknown content kind %q", kind)
	}
	if playlistID == "" {
		return nil, invalid("playlist id is required")
	}
	pl, err := s.source.ImportPlaylist(ctx, playlistID)
	if err != nil {
		return nil, upstream(err)
	}
	if len(pl.Videos) == 0 {
		return nil, invalid("playlist %s has no videos", playlistID)
	}
	return s.store(ctx, kind, categoryID, pl.Videos)
}

func upstream(err error) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.Wrap(ErrUnavailable, err.Error())
}

func (s *ContentService) store(ctx context.Context, kind ContentKind, categoryID string, videos []functions.VideoMetadata) (*ImportResult, error) {
	result := &ImportResult{Kind: kind}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextOrderIndex(tx, kind, categoryID)
		if err != nil {
			return err
		}

		for _, m := range videos {
			v := models.Video{
				ID:           m.VideoID,
				CategoryID:   categoryID,
				Title:        m.Title,
				Duration:     m.Duration,
				VideoURL:     m.VideoURL,
				ThumbnailURL: m.ThumbnailURL,
				OrderIndex:   next,
			}
			if v.VideoURL == "" {
				v.VideoURL = "https://www.youtube.com/watch?v=" + m.VideoID
			}

			var res *gorm.DB
			if kind == KindLecture {
				res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Lecture{Video: v, Speaker: m.Channel})
			} else {
				res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Recitation{Video: v, Reciter: m.Channel})
			}
			if res.Error != nil {
				return errors.Wrapf(res.Error, "store %s %s", kind, m.VideoID)
			}
			if res.RowsAffected == 0 {
				result.Skipped++
				continue
			}
			result.Imported++
			result.Videos = append(result.Videos, v)
			next++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("content imported", "kind", kind, "category_id", categoryID,
		"imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

func nextOrderIndex(tx *gorm.DB, kind ContentKind, categoryID string) (int, error) {
	var last int
	if err := tx.Table(contentTable(kind)).
		Select("COALESCE(MAX(order_index), -1)").
		Where("category_id = ?", categoryID).
		Scan(&last).Error; err != nil {
		return 0, errors.Wrap(err, "read order index")
	}
	return last + 1, nil
}

func contentTable(kind ContentKind) string {
	if kind == KindLecture {
		return models.Lecture{}.TableName()
	}
	return models.Recitation{}.TableName()
}

// Lectures lists a category's lectures in display order; an empty category
// lists all of them.
func (s *ContentService) Lectures(ctx context.Context, categoryID string) ([]models.Lecture, error) {
	var rows []models.Lecture
	q := s.db.WithContext(ctx).Order("category_id ASC, order_index ASC, id ASC")
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list lectures")
	}
	return rows, nil
}

func (s *ContentService) Recitations(ctx context.Context, categoryID string) ([]models.Recitation, error) {
	var rows []models.Recitation
	q := s.db.WithContext(ctx).Order("category_id ASC, order_index ASC, id ASC")
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list recitations")
	}
	return rows, nil
}
