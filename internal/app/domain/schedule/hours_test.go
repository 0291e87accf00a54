package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
)

func TestNormalizeHours(t *testing.T) {
	assert.Equal(t, "9:00 AM - 5:00 PM", normalizeHours("9:00 AM – 5:00 PM"))
	assert.Equal(t, "plain text", normalizeHours("plain text"))
}

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		name     string
		startTok string
		endTok   string
		want     TimeRange
	}{
		{
			name:     "both meridiems explicit",
			startTok: "9:00 AM",
			endTok:   "5:00 PM",
			want:     TimeRange{Start: 9 * 60, End: 17 * 60},
		},
		{
			name:     "start inherits end meridiem",
			startTok: "5:00",
			endTok:   "10:00 PM",
			want:     TimeRange{Start: 17 * 60, End: 22 * 60},
		},
		{
			name:     "inherited meridiem flips to keep the range forward",
			startTok: "11:00",
			endTok:   "2:00 PM",
			want:     TimeRange{Start: 11 * 60, End: 14 * 60},
		},
		{
			name:     "24h clock without meridiems",
			startTok: "09:30",
			endTok:   "18:00",
			want:     TimeRange{Start: 9*60 + 30, End: 18 * 60},
		},
		{
			name:     "overnight range keeps end before start",
			startTok: "10:00 PM",
			endTok:   "2:00 AM",
			want:     TimeRange{Start: 22 * 60, End: 2 * 60},
		},
		{
			name:     "12 AM is midnight",
			startTok: "12:00 AM",
			endTok:   "6:00 AM",
			want:     TimeRange{Start: 0, End: 6 * 60},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseTimeRange(tc.startTok, tc.endTok)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseTimeRangeMalformed(t *testing.T) {
	_, err := parseTimeRange("nine", "5:00 PM")
	assert.Error(t, err)
}

func TestParseDailyHours(t *testing.T) {
	t.Run("open 24 hours", func(t *testing.T) {
		ranges := parseDailyHours("Open 24 hours")
		require.Len(t, ranges, 1)
		assert.Equal(t, TimeRange{Start: 0, End: minutesPerDay}, ranges[0])
	})

	t.Run("closed yields no ranges", func(t *testing.T) {
		assert.Empty(t, parseDailyHours("Closed"))
	})

	t.Run("split periods", func(t *testing.T) {
		ranges := parseDailyHours("11:30 AM – 2:30 PM, 5:30 PM – 9:30 PM")
		require.Len(t, ranges, 2)
		assert.Equal(t, TimeRange{Start: 11*60 + 30, End: 14*60 + 30}, ranges[0])
		assert.Equal(t, TimeRange{Start: 17*60 + 30, End: 21*60 + 30}, ranges[1])
	})

	t.Run("malformed period is skipped", func(t *testing.T) {
		ranges := parseDailyHours("garbage - trash, 9:00 AM - 5:00 PM")
		require.Len(t, ranges, 1)
		assert.Equal(t, TimeRange{Start: 9 * 60, End: 17 * 60}, ranges[0])
	})
}

func TestRangesOverlapAtLeastOneHour(t *testing.T) {
	lunch := TimeRange{Start: 11 * 60, End: 14 * 60}

	tests := []struct {
		name string
		open TimeRange
		want bool
	}{
		{"fully covering", TimeRange{Start: 9 * 60, End: 22 * 60}, true},
		{"exactly one hour", TimeRange{Start: 13 * 60, End: 15 * 60}, true},
		{"under one hour", TimeRange{Start: 13*60 + 30, End: 15 * 60}, false},
		{"disjoint", TimeRange{Start: 17 * 60, End: 20 * 60}, false},
		{"overnight opening does not count toward next-day lunch", TimeRange{Start: 22 * 60, End: 12 * 60}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rangesOverlapAtLeastOneHour(tc.open, lunch))
		})
	}

	t.Run("overnight opening overlaps an overnight window", func(t *testing.T) {
		open := TimeRange{Start: 22 * 60, End: 2 * 60}
		query := TimeRange{Start: 23 * 60, End: 1 * 60}
		assert.True(t, rangesOverlapAtLeastOneHour(open, query))
	})
}

func TestIsOpenDuring(t *testing.T) {
	assert.True(t, isOpenDuring("11:30 AM – 9:30 PM", lunchWindow))
	assert.False(t, isOpenDuring("5:00 PM – 9:00 PM", lunchWindow))
	assert.True(t, isOpenDuring("5:00 PM – 9:00 PM", dinnerWindow))
	assert.False(t, isOpenDuring("Closed", dinnerWindow))
}

func TestWeekdayDescription(t *testing.T) {
	hours := &models.OpeningHours{WeekdayDescriptions: []string{
		"Monday: 9:00 AM – 5:00 PM",
		"Tuesday: Closed",
	}}

	desc, ok := weekdayDescription(hours, time.Monday)
	require.True(t, ok)
	assert.Equal(t, "9:00 AM – 5:00 PM", desc)

	_, ok = weekdayDescription(hours, time.Friday)
	assert.False(t, ok)

	_, ok = weekdayDescription(nil, time.Monday)
	assert.False(t, ok)
}

func TestSplitWeekdayLine(t *testing.T) {
	wd, desc, ok := splitWeekdayLine("Saturday: 10:00 AM – 6:00 PM")
	require.True(t, ok)
	assert.Equal(t, time.Saturday, wd)
	assert.Equal(t, "10:00 AM – 6:00 PM", desc)

	_, _, ok = splitWeekdayLine("Someday: 10:00 AM – 6:00 PM")
	assert.False(t, ok)

	_, _, ok = splitWeekdayLine("no separator here")
	assert.False(t, ok)
}
