package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
)

func TestCompositionsWithMin(t *testing.T) {
	tests := []struct {
		name      string
		n, k, min int
		want      [][]int
	}{
		{"exact fit", 4, 2, 2, [][]int{{2, 2}}},
		{"one spare night", 5, 2, 2, [][]int{{2, 3}, {3, 2}}},
		{"single part", 3, 1, 2, [][]int{{3}}},
		{"infeasible", 3, 2, 2, nil},
		{"relaxed minimum", 3, 2, 1, [][]int{{1, 2}, {2, 1}}},
		{"zero parts", 5, 0, 2, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, compositionsWithMin(tc.n, tc.k, tc.min))
		})
	}
}

func TestCompositionsSumToNights(t *testing.T) {
	for _, c := range compositionsWithMin(9, 3, 2) {
		sum := 0
		for _, nights := range c {
			sum += nights
			assert.GreaterOrEqual(t, nights, 2)
		}
		assert.Equal(t, 9, sum)
	}
}

func TestGatherStayPoints(t *testing.T) {
	days := make([]models.TripDay, 4)
	coord := func(i int) models.Coordinates {
		return models.Coordinates{Latitude: 25.0 + float64(i)*0.01, Longitude: 121.5}
	}
	for i := range days {
		days[i].Slots = []models.ScheduleItem{
			models.NewPlaceItem(models.SlotAttraction, models.Place{ID: "first", Location: coord(i)}),
			models.NewPlaceItem(models.SlotAttraction, models.Place{ID: "last", Location: coord(i)}),
		}
	}

	t.Run("start, interior and morning-after points", func(t *testing.T) {
		points := gatherStayPoints(days, 0, 2)
		// Day 0 last slot, day 1 first and last, day 2 first.
		assert.Equal(t, []models.Coordinates{coord(0), coord(1), coord(1), coord(2)}, points)
	})

	t.Run("stay ending at the trip end has no morning-after point", func(t *testing.T) {
		points := gatherStayPoints(days, 2, 2)
		assert.Equal(t, []models.Coordinates{coord(2), coord(3), coord(3)}, points)
	})

	t.Run("empty days contribute nothing", func(t *testing.T) {
		sparse := make([]models.TripDay, 3)
		assert.Empty(t, gatherStayPoints(sparse, 0, 2))
	})

	t.Run("interior day with a single slot counts once", func(t *testing.T) {
		single := []models.TripDay{
			{Slots: []models.ScheduleItem{models.NewPlaceItem(models.SlotAttraction, models.Place{Location: coord(0)})}},
			{Slots: []models.ScheduleItem{models.NewPlaceItem(models.SlotAttraction, models.Place{Location: coord(1)})}},
			{},
		}
		points := gatherStayPoints(single, 0, 2)
		assert.Equal(t, []models.Coordinates{coord(0), coord(1)}, points)
	})
}

func TestChooseCompositionPrefersCompactStays(t *testing.T) {
	// Days 0-2 cluster around one neighbourhood, days 4-6 around another;
	// day 3 is empty, so the 3+3 split keeps each stay in one cluster.
	near := models.Coordinates{Latitude: 25.0330, Longitude: 121.5650}
	far := models.Coordinates{Latitude: 25.1500, Longitude: 121.7800}

	days := make([]models.TripDay, 7)
	for i := 0; i < 3; i++ {
		days[i].Slots = []models.ScheduleItem{models.NewPlaceItem(models.SlotAttraction, models.Place{Location: near})}
	}
	for i := 4; i < 7; i++ {
		days[i].Slots = []models.ScheduleItem{models.NewPlaceItem(models.SlotAttraction, models.Place{Location: far})}
	}

	best := chooseComposition(days, compositionsWithMin(6, 2, minNightsPerStay))
	assert.Equal(t, []int{3, 3}, best)
}

func TestAssignLodgingSingleDayTrip(t *testing.T) {
	p := testPlanner(new(MockPlacesClient), Config{})
	trip := testTrip(1, 2)

	stays, err := p.assignLodging(context.Background(), trip, 1)
	require.NoError(t, err)
	assert.Nil(t, stays)
}

func TestAssignLodgingBooksOneStay(t *testing.T) {
	hotel := openAllWeek("h1", "Garden Hotel", 25.0335, 121.5655)

	places := new(MockPlacesClient)
	places.On("SearchNearby", mock.Anything, mock.Anything, 2000.0, CategoryLodging, mock.Anything).
		Return([]models.Place{hotel}, nil).Once()

	p := testPlanner(places, Config{})
	trip := testTrip(4, 2)
	for i := range trip.days {
		trip.days[i].Slots = []models.ScheduleItem{
			models.NewPlaceItem(models.SlotAttraction, alwaysOpen("a"+string(rune('1'+i)), 25.0330, 121.5650)),
		}
	}

	stays, err := p.assignLodging(context.Background(), trip, 4)
	require.NoError(t, err)

	require.Len(t, stays, 1)
	assert.Equal(t, 0, stays[0].StartDay)
	assert.Equal(t, 3, stays[0].Nights)
	assert.Equal(t, 3, stays[0].EndDay)
	require.NotNil(t, stays[0].Accommodation)
	assert.Equal(t, "h1", stays[0].Accommodation.ID)

	for i := 0; i < 3; i++ {
		last := trip.days[i].Slots[len(trip.days[i].Slots)-1]
		assert.Equal(t, models.SlotAccommodation, last.Type)
		assert.Equal(t, "h1", last.PlaceID())
	}
	lastDay := trip.days[3].Slots
	assert.NotEqual(t, models.SlotAccommodation, lastDay[len(lastDay)-1].Type)
}

func TestAssignLodgingSplitsLongTrips(t *testing.T) {
	hotel1 := openAllWeek("h1", "City Hotel", 25.0335, 121.5655)
	hotel2 := openAllWeek("h2", "Harbour Hotel", 25.1500, 121.7800)

	places := new(MockPlacesClient)
	places.On("SearchNearby", mock.Anything, mock.Anything, mock.Anything, CategoryLodging, mock.Anything).
		Return([]models.Place{hotel1, hotel2}, nil)

	p := testPlanner(places, Config{})
	trip := testTrip(7, 2)
	for i := range trip.days {
		trip.days[i].Slots = []models.ScheduleItem{
			models.NewPlaceItem(models.SlotAttraction, alwaysOpen("a"+string(rune('1'+i)), 25.0330, 121.5650)),
		}
	}

	stays, err := p.assignLodging(context.Background(), trip, 7)
	require.NoError(t, err)

	// Seven days means six nights in two stays of at least two nights.
	require.Len(t, stays, 2)
	totalNights := 0
	for _, s := range stays {
		totalNights += s.Nights
		assert.GreaterOrEqual(t, s.Nights, minNightsPerStay)
		require.NotNil(t, s.Accommodation)
	}
	assert.Equal(t, 6, totalNights)

	// Each stay books a different lodging.
	assert.NotEqual(t, stays[0].Accommodation.ID, stays[1].Accommodation.ID)
	assert.Equal(t, stays[0].EndDay, stays[1].StartDay)
}

func TestAssignLodgingKeepsStayWhenNoneFound(t *testing.T) {
	places := new(MockPlacesClient)
	places.On("SearchNearby", mock.Anything, mock.Anything, mock.Anything, CategoryLodging, mock.Anything).
		Return([]models.Place{}, nil)

	p := testPlanner(places, Config{})
	trip := testTrip(3, 2)
	for i := range trip.days {
		trip.days[i].Slots = []models.ScheduleItem{
			models.NewPlaceItem(models.SlotAttraction, alwaysOpen("a"+string(rune('1'+i)), 25.0330, 121.5650)),
		}
	}

	stays, err := p.assignLodging(context.Background(), trip, 3)
	require.NoError(t, err)

	require.Len(t, stays, 1)
	assert.Equal(t, 2, stays[0].Nights)
	assert.Nil(t, stays[0].Accommodation)
}
