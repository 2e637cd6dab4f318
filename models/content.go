// models/content.go - Quiz and media content
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Quiz is a question category such as "quran" or "seerah".
type Quiz struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Slug        string    `json:"quiz_id" gorm:"uniqueIndex;not null;size:50"`
	Title       string    `json:"title" gorm:"not null;size:100"`
	Description string    `json:"description" gorm:"type:text"`
	Difficulty  string    `json:"difficulty" gorm:"size:20;default:'Medium'"`
	Color       string    `json:"color" gorm:"size:20"`
	OrderIndex  int       `json:"order_index" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type QuizQuestion struct {
	ID            string         `json:"id" gorm:"primaryKey;size:64"`
	QuizSlug      string         `json:"quiz_id" gorm:"not null;size:50;index"`
	Question      string         `json:"question" gorm:"not null;type:text"`
	Options       datatypes.JSON `json:"options" gorm:"not null"` // JSON array of strings
	CorrectAnswer int            `json:"-" gorm:"not null"`        // index into Options
	Explanation   string         `json:"explanation,omitempty" gorm:"type:text"`
	OrderIndex    int            `json:"order_index" gorm:"default:0"`
	CreatedAt     time.Time      `json:"created_at"`
}

type QuizAttempt struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"not null;index"`
	QuizSlug       string    `json:"quiz_id" gorm:"not null;size:50;index"`
	CorrectAnswers int       `json:"correct_answers" gorm:"default:0"`
	TotalQuestions int       `json:"total_questions" gorm:"default:0"`
	Percentage     float64   `json:"percentage" gorm:"default:0"`
	IsPerfect      bool      `json:"is_perfect" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
}

// Video is shared by lectures and recitations.
type Video struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	CategoryID   string    `json:"category_id" gorm:"size:64;index"`
	Title        string    `json:"title" gorm:"not null;size:255"`
	Duration     string    `json:"duration" gorm:"size:20"`
	VideoURL     string    `json:"video_url" gorm:"not null"`
	ThumbnailURL string    `json:"thumbnail_url"`
	OrderIndex   int       `json:"order_index" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Lecture struct {
	Video
	Speaker string `json:"speaker" gorm:"size:120"`
}

type Recitation struct {
	Video
	Reciter string `json:"reciter" gorm:"size:120"`
}

type QuranVerse struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	Arabic       string    `json:"arabic" gorm:"type:text"`
	Translation  string    `json:"translation" gorm:"type:text;not null"`
	Reference    string    `json:"reference" gorm:"size:50"`
	SurahNumber  *int      `json:"surah_number"`
	VerseNumber  *int      `json:"verse_number"`
	CreatedAt    time.Time `json:"created_at"`
}

type Hadith struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	Arabic       string    `json:"arabic,omitempty" gorm:"type:text"`
	Translation  string    `json:"translation" gorm:"type:text;not null"`
	Reference    string    `json:"reference" gorm:"size:100"`
	Collection   string    `json:"collection,omitempty" gorm:"size:100"`
	BookNumber   string    `json:"book_number,omitempty" gorm:"size:20"`
	HadithNumber string    `json:"hadith_number,omitempty" gorm:"size:20"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

func (Lecture) TableName() string {
	return "lectures"
}

func (Recitation) TableName() string {
	return "recitations"
}

func (QuranVerse) TableName() string {
	return "quran_verses"
}

func (Hadith) TableName() string {
	return "hadiths"
}
