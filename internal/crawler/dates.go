package crawler

import (
	"log"
	"strings"
	"time"
)

var dateSeparators = strings.NewReplacer(".", "-", "/", "-")

// ParseDateSafe normalizes heterogeneous date text (YYYY-MM-DD, YYYY.MM.DD,
// YYYY/MM/DD, YYYYMMDD) to a date. A malformed date must never abort a crawl:
// on empty input or parse failure the result degrades to now+fallbackDays.
func ParseDateSafe(s string, fallbackDays int) time.Time {
	trimmed := strings.TrimSpace(s)
	if trimmed != "" {
		cleaned := dateSeparators.Replace(trimmed)
		if t, err := time.Parse("2006-1-2", cleaned); err == nil {
			return t
		}
		if t, err := time.Parse("20060102", cleaned); err == nil {
			return t
		}
		log.Printf("date parse failed for %q, using now+%dd", s, fallbackDays)
	}
	return time.Now().AddDate(0, 0, fallbackDays)
}
