package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
)

// TimeRange is a window within a day expressed in minutes from
// midnight. End <= Start means the range crosses midnight.
type TimeRange struct {
	Start int
	End   int
}

const minutesPerDay = 24 * 60

// Meal windows used by the restaurant assigner.
var (
	lunchWindow  = TimeRange{Start: 11 * 60, End: 14 * 60}
	dinnerWindow = TimeRange{Start: 17 * 60, End: 20 * 60}
)

// AM/PM bucket cutoffs for weekly availability: a place opening before
// 11:00 is morning-suitable, one closing after 16:00 evening-suitable.
const (
	amCutoffMinutes = 11 * 60
	pmCutoffMinutes = 16 * 60
)

// open24HoursMarker appears in collaborator descriptions such as
// "Open 24 hours".
const open24HoursMarker = "24 hours"

// hoursNormalizer maps the unicode thin/narrow spaces and dashes that
// the places collaborator emits onto plain ASCII so the range splitter
// only ever sees "-" and " ".
var hoursNormalizer = runes.Map(func(r rune) rune {
	switch r {
	case ' ', ' ', ' ':
		return ' '
	case '–', '—':
		return '-'
	}
	return r
})

// normalizeHours rewrites an opening-hours description to plain ASCII
// separators.
func normalizeHours(s string) string {
	out, _, err := transform.String(hoursNormalizer, s)
	if err != nil {
		return s
	}
	return out
}

// clockToken is one side of a parsed time range, before meridiem
// resolution.
type clockToken struct {
	hour     int
	minute   int
	meridiem byte // 'A', 'P' or 0 when the token carries no AM/PM
}

func parseClockToken(tok string) (clockToken, error) {
	tok = strings.TrimSpace(tok)

	var t clockToken
	switch {
	case strings.Contains(tok, "AM"):
		t.meridiem = 'A'
		tok = strings.TrimSpace(strings.Replace(tok, "AM", "", 1))
	case strings.Contains(tok, "PM"):
		t.meridiem = 'P'
		tok = strings.TrimSpace(strings.Replace(tok, "PM", "", 1))
	}

	parts := strings.SplitN(tok, ":", 2)
	if len(parts) != 2 {
		return clockToken{}, fmt.Errorf("malformed time token %q", tok)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return clockToken{}, fmt.Errorf("malformed hour in %q: %w", tok, err)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return clockToken{}, fmt.Errorf("malformed minute in %q: %w", tok, err)
	}
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 {
		return clockToken{}, fmt.Errorf("time %q out of range", tok)
	}

	t.hour = hour
	t.minute = minute
	return t, nil
}

// minutesWith resolves the token against an explicit meridiem.
func (t clockToken) minutesWith(meridiem byte) int {
	h := t.hour % 12
	if meridiem == 'P' {
		h += 12
	}
	return h*60 + t.minute
}

// minutes resolves the token using its own meridiem, or as a 24h clock
// when it carries none.
func (t clockToken) minutes() int {
	if t.meridiem != 0 {
		return t.minutesWith(t.meridiem)
	}
	return t.hour*60 + t.minute
}

func flipMeridiem(m byte) byte {
	if m == 'A' {
		return 'P'
	}
	return 'A'
}

// parseTimeRange parses the two sides of a "start - end" range. A start
// token without AM/PM inherits the end token's meridiem, unless only
// the flipped meridiem yields a forward range (e.g. "11:00 - 2:00 PM"
// starts at 11 AM, not 11 PM).
func parseTimeRange(startTok, endTok string) (TimeRange, error) {
	s, err := parseClockToken(startTok)
	if err != nil {
		return TimeRange{}, err
	}
	e, err := parseClockToken(endTok)
	if err != nil {
		return TimeRange{}, err
	}

	end := e.minutes()

	var start int
	switch {
	case s.meridiem != 0 || e.meridiem == 0:
		start = s.minutes()
	default:
		start = s.minutesWith(e.meridiem)
		if start >= end {
			if alt := s.minutesWith(flipMeridiem(e.meridiem)); alt < end {
				start = alt
			}
		}
	}

	return TimeRange{Start: start, End: end}, nil
}

// parseDailyHours parses a single day's description into time ranges.
// "Open 24 hours" becomes one full-day range; fragments without a dash
// (e.g. "Closed") are skipped.
func parseDailyHours(desc string) []TimeRange {
	desc = normalizeHours(desc)
	if strings.Contains(desc, open24HoursMarker) {
		return []TimeRange{{Start: 0, End: minutesPerDay}}
	}

	var ranges []TimeRange
	for _, period := range strings.Split(desc, ",") {
		if !strings.Contains(period, "-") {
			continue
		}
		bounds := strings.SplitN(period, "-", 2)
		r, err := parseTimeRange(bounds[0], bounds[1])
		if err != nil {
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges
}

// rangesOverlapAtLeastOneHour reports whether the opening range and the
// query range overlap for at least one hour. Ranges whose end does not
// lie after their start are treated as crossing midnight.
func rangesOverlapAtLeastOneHour(open, query TimeRange) bool {
	openEnd := open.End
	if openEnd <= open.Start {
		openEnd += minutesPerDay
	}
	queryEnd := query.End
	if queryEnd <= query.Start {
		queryEnd += minutesPerDay
	}

	latestStart := max(open.Start, query.Start)
	earliestEnd := min(openEnd, queryEnd)
	return earliestEnd-latestStart >= 60
}

// isOpenDuring reports whether any range of a day's description keeps
// the place open for at least an hour of the query window.
func isOpenDuring(desc string, window TimeRange) bool {
	for _, r := range parseDailyHours(desc) {
		if rangesOverlapAtLeastOneHour(r, window) {
			return true
		}
	}
	return false
}

// weekdayDescription extracts the free-text hours for one weekday from
// the place's per-weekday lines ("Monday: 9:00 AM - 5:00 PM"). The
// second return is false when the place has no line for that weekday.
func weekdayDescription(hours *models.OpeningHours, weekday time.Weekday) (string, bool) {
	if hours == nil {
		return "", false
	}
	prefix := weekday.String() + ": "
	for _, line := range hours.WeekdayDescriptions {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix), true
		}
	}
	return "", false
}

// splitWeekdayLine splits a "Monday: 9:00 AM - 5:00 PM" line into its
// weekday and description. ok is false for lines with an unknown day
// prefix.
func splitWeekdayLine(line string) (time.Weekday, string, bool) {
	parts := strings.SplitN(line, ": ", 2)
	if len(parts) != 2 {
		return 0, "", false
	}
	wd, ok := weekdayByName[strings.TrimSpace(parts[0])]
	if !ok {
		return 0, "", false
	}
	return wd, parts[1], true
}

var weekdayByName = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}
