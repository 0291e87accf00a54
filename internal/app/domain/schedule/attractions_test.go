package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
)

func TestBuildWeeklyAvailability(t *testing.T) {
	noHours := alwaysOpen("open", 25.0, 121.5)
	scoped := models.Place{
		ID: "scoped",
		OpeningHours: &models.OpeningHours{WeekdayDescriptions: []string{
			"Monday: 12:00 PM – 3:00 PM",   // neither slot
			"Tuesday: 8:00 AM – 11:00 AM",  // morning only
			"Wednesday: 5:00 PM – 9:00 PM", // evening only
			"Thursday: 9:00 AM – 8:00 PM",  // both
		}},
	}

	avail := buildWeeklyAvailability([]models.Place{noHours, scoped})

	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		assert.Contains(t, placeIDs(avail[wd].AM), "open", wd.String())
		assert.Contains(t, placeIDs(avail[wd].PM), "open", wd.String())
	}

	assert.NotContains(t, placeIDs(avail[time.Monday].AM), "scoped")
	assert.NotContains(t, placeIDs(avail[time.Monday].PM), "scoped")
	assert.Contains(t, placeIDs(avail[time.Tuesday].AM), "scoped")
	assert.NotContains(t, placeIDs(avail[time.Tuesday].PM), "scoped")
	assert.NotContains(t, placeIDs(avail[time.Wednesday].AM), "scoped")
	assert.Contains(t, placeIDs(avail[time.Wednesday].PM), "scoped")
	assert.Contains(t, placeIDs(avail[time.Thursday].AM), "scoped")
	assert.Contains(t, placeIDs(avail[time.Thursday].PM), "scoped")
}

func placeIDs(places []models.Place) []string {
	ids := make([]string, 0, len(places))
	for _, p := range places {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestFindDailyPair(t *testing.T) {
	t.Run("picks the closest pair and removes it everywhere", func(t *testing.T) {
		near1 := alwaysOpen("near1", 25.0478, 121.5170)
		near2 := alwaysOpen("near2", 25.0480, 121.5175)
		far := alwaysOpen("far", 25.1100, 121.8000)

		avail := buildWeeklyAvailability([]models.Place{near1, near2, far})

		am, pm, ok := findDailyPair(time.Monday, avail, 5)
		require.True(t, ok)
		picked := []string{am.ID, pm.ID}
		assert.ElementsMatch(t, []string{"near1", "near2"}, picked)

		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			assert.NotContains(t, placeIDs(avail[wd].AM), am.ID)
			assert.NotContains(t, placeIDs(avail[wd].PM), pm.ID)
		}
	})

	t.Run("never pairs a place with itself", func(t *testing.T) {
		solo := alwaysOpen("solo", 25.0, 121.5)
		avail := buildWeeklyAvailability([]models.Place{solo})

		_, _, ok := findDailyPair(time.Monday, avail, 5)
		assert.False(t, ok)
	})

	t.Run("no pair within the distance bound", func(t *testing.T) {
		a := alwaysOpen("a", 25.0, 121.5)
		b := alwaysOpen("b", 26.0, 122.5) // well over 100km apart
		avail := buildWeeklyAvailability([]models.Place{a, b})

		_, _, ok := findDailyPair(time.Monday, avail, 5)
		assert.False(t, ok)
	})

	t.Run("empty bucket", func(t *testing.T) {
		avail := buildWeeklyAvailability(nil)
		_, _, ok := findDailyPair(time.Monday, avail, 5)
		assert.False(t, ok)
	})
}

func TestAssignAttractionsMixedDays(t *testing.T) {
	places := new(MockPlacesClient)
	places.On("SearchAttractionsByCity", mock.Anything, "Taipei", 2).
		Return([]models.Place{
			alwaysOpen("a1", 25.0330, 121.5650),
			alwaysOpen("a2", 25.0340, 121.5660),
		}, nil).Once()
	places.On("SearchNearby", mock.Anything, mock.Anything, 1000.0, CategoryAttraction, mock.Anything).
		Return([]models.Place{alwaysOpen("a3", 25.0335, 121.5652)}, nil).Once()

	p := testPlanner(places, Config{})
	trip := testTrip(2, 5)
	event := models.Event{ID: "ev1", Title: "Concert", StartDate: trip.days[1].Date, EndDate: trip.days[1].Date}
	trip.days[1].Slots = append(trip.days[1].Slots, models.NewEventItem(event))

	err := p.assignAttractions(context.Background(), trip)
	require.NoError(t, err)

	// Event-free day gets a morning/afternoon pair.
	require.Len(t, trip.days[0].Slots, 2)
	assert.Equal(t, models.SlotAttraction, trip.days[0].Slots[0].Type)
	assert.Equal(t, models.SlotAttraction, trip.days[0].Slots[1].Type)

	// Single-event day gets one nearby attraction ahead of the event.
	require.Len(t, trip.days[1].Slots, 2)
	assert.Equal(t, models.SlotAttraction, trip.days[1].Slots[0].Type)
	assert.Equal(t, "a3", trip.days[1].Slots[0].PlaceID())
	assert.Equal(t, models.SlotEvent, trip.days[1].Slots[1].Type)

	places.AssertExpectations(t)
}

func TestAssignAttractionsTwoEventDayUntouched(t *testing.T) {
	places := new(MockPlacesClient)

	p := testPlanner(places, Config{})
	trip := testTrip(1, 5)
	for _, id := range []string{"ev1", "ev2"} {
		e := models.Event{ID: id, StartDate: trip.days[0].Date, EndDate: trip.days[0].Date}
		trip.days[0].Slots = append(trip.days[0].Slots, models.NewEventItem(e))
	}

	err := p.assignAttractions(context.Background(), trip)
	require.NoError(t, err)

	assert.Len(t, trip.days[0].Slots, 2)
	places.AssertNotCalled(t, "SearchAttractionsByCity", mock.Anything, mock.Anything, mock.Anything)
	places.AssertNotCalled(t, "SearchNearby", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignAttractionsNoNearbyCandidates(t *testing.T) {
	places := new(MockPlacesClient)
	places.On("SearchNearby", mock.Anything, mock.Anything, mock.Anything, CategoryAttraction, mock.Anything).
		Return([]models.Place{}, nil).Once()

	p := testPlanner(places, Config{})
	trip := testTrip(1, 5)
	event := models.Event{ID: "ev1", StartDate: trip.days[0].Date, EndDate: trip.days[0].Date}
	trip.days[0].Slots = append(trip.days[0].Slots, models.NewEventItem(event))

	err := p.assignAttractions(context.Background(), trip)
	require.NoError(t, err)

	// The day keeps its lone event when nothing is found nearby.
	require.Len(t, trip.days[0].Slots, 1)
	assert.Equal(t, models.SlotEvent, trip.days[0].Slots[0].Type)
}
