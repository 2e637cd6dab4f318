package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDuration(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"13:20", "13:20"},
		{"5:7", "5:07"},
		{"1:02:03", "62:03"},
		{"45", "45:00"},
		{"45m", "45:00"},
		{"1h 30m", "90:00"},
		{"2 hours", "120:00"},
		{"  12:05 ", "12:05"},
		{"live", "live"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDuration(tt.in))
		})
	}
}

func TestParseQuranReference(t *testing.T) {
	tests := []struct {
		ref          string
		surah, verse int
		ok           bool
	}{
		{"Quran 2:255", 2, 255, true},
		{"Al-Baqarah 2:255–257", 2, 255, true},
		{"94 : 5", 94, 5, true},
		{"115:1", 0, 0, false},
		{"Sahih Bukhari 1", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		surah, verse, ok := ParseQuranReference(tt.ref)
		assert.Equal(t, tt.ok, ok, tt.ref)
		assert.Equal(t, tt.surah, surah, tt.ref)
		assert.Equal(t, tt.verse, verse, tt.ref)
	}
}
