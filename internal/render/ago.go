package render

import (
	"strconv"
	"time"
)

const (
	minute = int64(time.Minute / time.Millisecond)
	hour   = int64(time.Hour / time.Millisecond)
	day    = 24 * hour
	month  = 30 * day
	year   = 365 * day
)

// Ago formats the span between an event and now as "N unit(s) ago", using
// the largest unit the span covers. Months are 30 days and years 365.
func Ago(span time.Duration) string {
	ms := span.Milliseconds()
	switch {
	case ms >= year:
		return plural(ms/year, "year")
	case ms >= month:
		return plural(ms/month, "month")
	case ms >= day:
		return plural(ms/day, "day")
	case ms >= hour:
		return plural(ms/hour, "hour")
	}
	if ms < 0 {
		ms = 0
	}
	return plural(ms/minute, "minute")
}

func plural(n int64, unit string) string {
	s := strconv.FormatInt(n, 10) + " " + unit
	if n != 1 {
		s += "s"
	}
	return s + " ago"
}
