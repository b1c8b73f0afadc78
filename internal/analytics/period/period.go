// Package period resolves reporting period tokens and explicit date bounds into
// a current window and the equally sized window immediately preceding it.
package period

import (
	"strings"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

const (
	Period7d  = "7d"
	Period30d = "30d"
	Period90d = "90d"
	Period1y  = "1y"

	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"

	PeriodCustom = "custom"

	DefaultPeriod = Period30d

	// MaxCustomDays bounds explicit from/to windows; longer spans fall back
	// to the token window.
	MaxCustomDays = 3*365 + 1
)

var periodDays = map[string]int{
	Period7d:  7,
	Period30d: 30,
	Period90d: 90,
	Period1y:  365,

	PeriodToday: 1,
	PeriodWeek:  7,
	PeriodMonth: 30,
	PeriodYear:  365,
}

const dateOnly = "2006-01-02"

// Normalize returns the canonical period token, DefaultPeriod for anything unknown.
func Normalize(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	if _, ok := periodDays[t]; ok {
		return t
	}
	return DefaultPeriod
}

// WindowDays returns the number of days covered by a period token.
func WindowDays(token string) int {
	return periodDays[Normalize(token)]
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last tick of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-entity.TimeTick)
}

// Previous returns the window of identical duration ending one tick before cur starts.
func Previous(cur entity.TimeRange) entity.TimeRange {
	end := cur.From.Add(-entity.TimeTick)
	return entity.TimeRange{
		From: end.Add(-cur.Duration()),
		To:   end,
	}
}

// Resolve turns a period token and optional from/to query values into a
// report range relative to now. Malformed input never fails: unknown tokens
// fall back to DefaultPeriod and unusable from/to values to the token window.
func Resolve(token, from, to string, now time.Time) entity.ReportRange {
	p := Normalize(token)
	days := WindowDays(p)

	end := EndOfDay(now)
	start := StartOfDay(end.AddDate(0, 0, -(days - 1)))

	if cur, ok := explicit(from, to, now.Location(), days); ok {
		return entity.ReportRange{
			Period:   PeriodCustom,
			Days:     calendarDays(cur),
			Current:  cur,
			Previous: Previous(cur),
		}
	}

	cur := entity.TimeRange{From: start, To: end}
	return entity.ReportRange{
		Period:   p,
		Days:     days,
		Current:  cur,
		Previous: Previous(cur),
	}
}

// explicit builds a window from query values. Either bound may be omitted, in
// which case it is derived from the other using the token's window size.
func explicit(from, to string, loc *time.Location, days int) (entity.TimeRange, bool) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" && to == "" {
		return entity.TimeRange{}, false
	}

	var end, start time.Time
	if to != "" {
		t, dayOnly, ok := parseBound(to, loc)
		if !ok {
			return entity.TimeRange{}, false
		}
		end = t
		if dayOnly {
			end = EndOfDay(t)
		}
	}
	if from != "" {
		t, _, ok := parseBound(from, loc)
		if !ok {
			return entity.TimeRange{}, false
		}
		start = StartOfDay(t)
	}

	switch {
	case end.IsZero():
		end = EndOfDay(start.AddDate(0, 0, days-1))
	case start.IsZero():
		start = StartOfDay(end.AddDate(0, 0, -(days - 1)))
	}
	if start.After(end) {
		return entity.TimeRange{}, false
	}
	if end.Sub(start) >= MaxCustomDays*24*time.Hour {
		return entity.TimeRange{}, false
	}
	return entity.TimeRange{From: start, To: end}, true
}

// parseBound parses a from/to value. dayOnly is set for plain dates.
func parseBound(s string, loc *time.Location) (t time.Time, dayOnly bool, ok bool) {
	if t, err := time.ParseInLocation(dateOnly, s, loc); err == nil && entity.ValidTime(t) {
		return t, true, true
	}
	t, ok = entity.ParseTimeIn(s, loc)
	if !ok {
		return time.Time{}, false, false
	}
	return t.In(loc), false, true
}

func calendarDays(tr entity.TimeRange) int {
	first := StartOfDay(tr.From)
	last := StartOfDay(tr.To.In(tr.From.Location()))
	n := 1
	for d := first; d.Before(last); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// Today returns the realtime range: start of today through now, compared with
// the same span of the previous day.
func Today(now time.Time) entity.ReportRange {
	cur := entity.TimeRange{From: StartOfDay(now), To: now}
	return entity.ReportRange{
		Period:  PeriodToday,
		Days:    1,
		Current: cur,
		Previous: entity.TimeRange{
			From: cur.From.AddDate(0, 0, -1),
			To:   cur.To.AddDate(0, 0, -1),
		},
	}
}

// AllTime returns a window from the Unix epoch through the end of now's day.
func AllTime(now time.Time) entity.TimeRange {
	return entity.TimeRange{From: time.Unix(0, 0).In(now.Location()), To: EndOfDay(now)}
}

// DayKey returns the bucket key of t's day in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateOnly)
}

// Days returns the day keys covered by tr, in order.
func Days(tr entity.TimeRange) []string {
	loc := tr.From.Location()
	var keys []string
	last := StartOfDay(tr.To.In(loc))
	for d := StartOfDay(tr.From); !d.After(last); d = d.AddDate(0, 0, 1) {
		keys = append(keys, d.Format(dateOnly))
	}
	return keys
}
