package importer

import (
	"regexp"
	"strconv"
	"strings"
)

var chapterVerse = regexp.MustCompile(`(\d+)\s*:\s*(\d+)(?:\s*-\s*\d+)?\s*$`)

func normalizeReference(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.ReplaceAll(ref, "\u202F", " ")
	ref = strings.ReplaceAll(ref, "\u00A0", " ")
	ref = strings.ReplaceAll(ref, "\u2013", "-")
	ref = strings.ReplaceAll(ref, "\u2014", "-")
	return ref
}

// ParseQuranReference reads the surah and first verse from references such
// as "Quran 2:255", "Al-Baqarah 2:255-257" or "94:5". ok is false when the
// reference carries no chapter:verse pair or the numbers are out of range.
func ParseQuranReference(ref string) (surah, verse int, ok bool) {
	m := chapterVerse.FindStringSubmatch(normalizeReference(ref))
	if m == nil {
		return 0, 0, false
	}
	surah, _ = strconv.Atoi(m[1])
	verse, _ = strconv.Atoi(m[2])
	if surah < 1 || surah > 114 || verse < 1 {
		return 0, 0, false
	}
	return surah, verse, true
}
