// Package importer loads content sheets (CSV exports of the content tables)
// into the database.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"muslimlife/models"
)

// Kind names one importable sheet.
type Kind string

const (
	KindQuizzes     Kind = "quizzes"
	KindQuestions   Kind = "questions"
	KindLectures    Kind = "lectures"
	KindRecitations Kind = "recitations"
	KindVerses      Kind = "verses"
	KindHadiths     Kind = "hadiths"
)

var Kinds = []Kind{KindQuizzes, KindQuestions, KindLectures, KindRecitations, KindVerses, KindHadiths}

// ErrMalformed is returned when a sheet is not readable CSV.
var ErrMalformed = errors.New("malformed sheet")

func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// RowError reports a rejected line. Line numbers count the header as line 1.
type RowError struct {
	Line int    `json:"line"`
	Err  string `json:"error"`
}

type Result struct {
	Kind     Kind       `json:"kind"`
	Rows     int        `json:"rows"`
	Accepted int        `json:"accepted"`
	Written  int64      `json:"written"`
	Rejected []RowError `json:"rejected,omitempty"`
}

func (r *Result) reject(line int, format string, args ...interface{}) {
	r.Rejected = append(r.Rejected, RowError{Line: line, Err: fmt.Sprintf(format, args...)})
}

type Importer struct {
	db        *gorm.DB
	log       *zap.SugaredLogger
	batchSize int
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Importer {
	return &Importer{db: db, log: log, batchSize: 100}
}

// Import reads one sheet of the given kind. Quizzes are upserted on their
// slug and questions on their id; every other kind only inserts ids that
// are not present yet.
func (im *Importer) Import(ctx context.Context, kind Kind, r io.Reader) (*Result, error) {
	res, err := im.run(im.db.WithContext(ctx), kind, r)
	if err != nil {
		return nil, err
	}
	im.log.Infow("sheet imported", "kind", kind, "rows", res.Rows, "written", res.Written, "rejected", len(res.Rejected))
	return res, nil
}

// Lint validates a sheet without a database. Accepted counts the rows an
// import would try to write.
func Lint(kind Kind, r io.Reader) (*Result, error) {
	return (&Importer{batchSize: 100}).run(nil, kind, r)
}

func (im *Importer) run(db *gorm.DB, kind Kind, r io.Reader) (*Result, error) {
	if !kind.Valid() {
		return nil, errors.Errorf("unknown sheet kind %q", kind)
	}
	rows, err := readSheet(r)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "read %s sheet: %v", kind, err)
	}

	res := &Result{Kind: kind, Rows: len(rows)}
	switch kind {
	case KindQuizzes:
		err = im.importQuizzes(db, rows, res)
	case KindQuestions:
		err = im.importQuestions(db, rows, res)
	case KindLectures:
		err = im.importLectures(db, rows, res)
	case KindRecitations:
		err = im.importRecitations(db, rows, res)
	case KindVerses:
		err = im.importVerses(db, rows, res)
	case KindHadiths:
		err = im.importHadiths(db, rows, res)
	default:
		return nil, errors.Errorf("unknown sheet kind %q", kind)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "import %s", kind)
	}
	return res, nil
}

// ================== SHEET READING ==================

type row struct {
	line   int
	fields map[string]string
}

func (r row) get(name string) string {
	return strings.TrimSpace(r.fields[name])
}

func (r row) intOr(name string, def int) int {
	n, err := strconv.Atoi(r.get(name))
	if err != nil {
		return def
	}
	return n
}

func (r row) optionalInt(name string) *int {
	n, err := strconv.Atoi(r.get(name))
	if err != nil {
		return nil
	}
	return &n
}

func (r row) timeOr(name string, def time.Time) time.Time {
	v := r.get(name)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999-07", "2006-01-02 15:04:05.999999Z07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return def
}

func readSheet(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	var rows []row
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		fields := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				fields[h] = rec[i]
			}
		}
		rows = append(rows, row{line: line, fields: fields})
	}
	return rows, nil
}

// ================== KINDS ==================

func (im *Importer) importQuizzes(db *gorm.DB, rows []row, res *Result) error {
	now := time.Now().UTC()
	var quizzes []models.Quiz
	for _, r := range rows {
		slug := r.get("quiz_id")
		if slug == "" {
			slug = r.get("slug")
		}
		if slug == "" || r.get("title") == "" {
			res.reject(r.line, "quiz_id and title are required")
			continue
		}
		difficulty := r.get("difficulty")
		if difficulty == "" {
			difficulty = "Medium"
		}
		quizzes = append(quizzes, models.Quiz{
			Slug:        slug,
			Title:       r.get("title"),
			Description: r.get("description"),
			Difficulty:  difficulty,
			Color:       r.get("color"),
			OrderIndex:  r.intOr("order_index", 0),
			CreatedAt:   r.timeOr("created_at", now),
			UpdatedAt:   now,
		})
	}
	return im.write(db, quizzes, len(quizzes), clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "difficulty", "color", "order_index", "updated_at"}),
	}, res)
}

func (im *Importer) importQuestions(db *gorm.DB, rows []row, res *Result) error {
	now := time.Now().UTC()
	var questions []models.QuizQuestion
	for _, r := range rows {
		id, slug := r.get("id"), r.get("quiz_id")
		if id == "" || slug == "" || r.get("question") == "" {
			res.reject(r.line, "id, quiz_id and question are required")
			continue
		}

		var options []string
		if err := sonic.UnmarshalString(r.get("options"), &options); err != nil || len(options) < 2 {
			res.reject(r.line, "options must be a JSON array with at least two entries")
			continue
		}
		correct, err := strconv.Atoi(r.get("correct_answer"))
		if err != nil || correct < 0 || correct >= len(options) {
			res.reject(r.line, "correct_answer must index into options")
			continue
		}
		encoded, err := sonic.Marshal(options)
		if err != nil {
			res.reject(r.line, "encode options: %v", err)
			continue
		}

		questions = append(questions, models.QuizQuestion{
			ID:            id,
			QuizSlug:      slug,
			Question:      r.get("question"),
			Options:       datatypes.JSON(encoded),
			CorrectAnswer: correct,
			Explanation:   r.get("explanation"),
			OrderIndex:    r.intOr("order_index", 0),
			CreatedAt:     r.timeOr("created_at", now),
		})
	}
	return im.write(db, questions, len(questions), clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quiz_slug", "question", "options", "correct_answer", "explanation", "order_index"}),
	}, res)
}

func (im *Importer) video(r row, res *Result, now time.Time) (models.Video, bool) {
	v := models.Video{
		ID:           r.get("id"),
		CategoryID:   r.get("category_id"),
		Title:        r.get("title"),
		Duration:     NormalizeDuration(r.get("duration")),
		VideoURL:     r.get("video_url"),
		ThumbnailURL: r.get("thumbnail_url"),
		OrderIndex:   r.intOr("order_index", 0),
		CreatedAt:    r.timeOr("created_at", now),
		UpdatedAt:    r.timeOr("updated_at", now),
	}
	if v.ID == "" || v.Title == "" || v.VideoURL == "" {
		res.reject(r.line, "id, title and video_url are required")
		return v, false
	}
	return v, true
}

func (im *Importer) importLectures(db *gorm.DB, rows []row, res *Result) error {
	now := time.Now().UTC()
	var lectures []models.Lecture
	for _, r := range rows {
		if v, ok := im.video(r, res, now); ok {
			lectures = append(lectures, models.Lecture{Video: v, Speaker: r.get("speaker")})
		}
	}
	return im.write(db, lectures, len(lectures), clause.OnConflict{DoNothing: true}, res)
}

func (im *Importer) importRecitations(db *gorm.DB, rows []row, res *Result) error {
	now := time.Now().UTC()
	var recitations []models.Recitation
	for _, r := range rows {
		if v, ok := im.video(r, res, now); ok {
			recitations = append(recitations, models.Recitation{Video: v, Reciter: r.get("reciter")})
		}
	}
	return im.write(db, recitations, len(recitations), clause.OnConflict{DoNothing: true}, res)
}

func (im *Importer) importVerses(db *gorm.DB, rows []row, res *Result) error {
	now := time.Now().UTC()
	var verses []models.QuranVerse
	for _, r := range rows {
		v := models.QuranVerse{
			ID:          r.get("id"),
			Arabic:      r.get("arabic"),
			Translation: r.get("translation"),
			Reference:   r.get("reference"),
			SurahNumber: r.optionalInt("surah_number"),
			VerseNumber: r.optionalInt("verse_number"),
			CreatedAt:   r.timeOr("created_at", now),
		}
		if v.ID == "" || v.Translation == "" {
			res.reject(r.line, "id and translation are required")
			continue
		}
		if v.SurahNumber == nil || v.VerseNumber == nil {
			if surah, verse, ok := ParseQuranReference(v.Reference); ok {
				v.SurahNumber, v.VerseNumber = &surah, &verse
			}
		}
		verses = append(verses, v)
	}
	return im.write(db, verses, len(verses), clause.OnConflict{DoNothing: true}, res)
}

func (im *Importer) importHadiths(db *gorm.DB, rows []row, res *Result) error {
	now := time.Now().UTC()
	var hadiths []models.Hadith
	for _, r := range rows {
		h := models.Hadith{
			ID:           r.get("id"),
			Arabic:       r.get("arabic"),
			Translation:  r.get("translation"),
			Reference:    r.get("reference"),
			Collection:   r.get("collection"),
			BookNumber:   r.get("book_number"),
			HadithNumber: r.get("hadith_number"),
			CreatedAt:    r.timeOr("created_at", now),
		}
		if h.ID == "" || h.Translation == "" {
			res.reject(r.line, "id and translation are required")
			continue
		}
		hadiths = append(hadiths, h)
	}
	return im.write(db, hadiths, len(hadiths), clause.OnConflict{DoNothing: true}, res)
}

// write inserts the rows in batches inside one transaction. A nil db only
// counts them.
func (im *Importer) write(db *gorm.DB, rows interface{}, n int, conflict clause.OnConflict, res *Result) error {
	res.Accepted = n
	if n == 0 || db == nil {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		out := tx.Clauses(conflict).CreateInBatches(rows, im.batchSize)
		if out.Error != nil {
			return out.Error
		}
		res.Written = out.RowsAffected
		return nil
	})
}
