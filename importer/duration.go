package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	allDigits    = regexp.MustCompile(`^\d+$`)
	hoursMinutes = regexp.MustCompile(`^(?:(\d+)\s*h(?:ours?|rs?)?)?\s*(?:(\d+)\s*m(?:in(?:utes?|s)?)?)?$`)
)

// NormalizeDuration rewrites the duration spellings found in content sheets
// ("13:20", "1:02:03", "1h 30m", "45m", "45") as minutes:seconds. Anything it
// cannot read is returned trimmed but otherwise unchanged.
func NormalizeDuration(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		switch len(parts) {
		case 2:
			return minutesSeconds(0, digits(parts[0]), digits(parts[1]))
		case 3:
			return minutesSeconds(digits(parts[0]), digits(parts[1]), digits(parts[2]))
		}
		return s
	}

	if allDigits.MatchString(s) {
		return s + ":00"
	}

	if m := hoursMinutes.FindStringSubmatch(strings.ToLower(s)); m != nil && (m[1] != "" || m[2] != "") {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		if h > 0 || mins > 0 {
			return minutesSeconds(h, mins, 0)
		}
	}
	return s
}

// digits reads a non-negative integer; anything else counts as zero.
func digits(s string) int {
	s = strings.TrimSpace(s)
	if !allDigits.MatchString(s) {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

func minutesSeconds(h, m, s int) string {
	total := h*3600 + m*60 + s
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
