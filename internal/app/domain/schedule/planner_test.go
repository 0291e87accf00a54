package schedule

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
)

// MockEventsRepository is a mock implementation of EventsRepository
type MockEventsRepository struct {
	mock.Mock
}

func (m *MockEventsRepository) FetchEventsForCity(ctx context.Context, city string, start, end time.Time) ([]models.Event, error) {
	args := m.Called(ctx, city, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

// MockPlacesClient is a mock implementation of PlacesClient
type MockPlacesClient struct {
	mock.Mock
}

func (m *MockPlacesClient) SearchNearby(ctx context.Context, center models.Coordinates, radiusMeters float64, category PlaceCategory, excludeIDs []string) ([]models.Place, error) {
	args := m.Called(ctx, center, radiusMeters, category, excludeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Place), args.Error(1)
}

func (m *MockPlacesClient) SearchAttractionsByCity(ctx context.Context, city string, minCount int) ([]models.Place, error) {
	args := m.Called(ctx, city, minCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Place), args.Error(1)
}

// alwaysOpen builds a place treated as open every day, both slots.
func alwaysOpen(id string, lat, lng float64) models.Place {
	return models.Place{
		ID:       id,
		Name:     "Place " + id,
		Location: models.Coordinates{Latitude: lat, Longitude: lng},
	}
}

// openAllWeek builds a place with an explicit 24-hour line per weekday.
func openAllWeek(id, name string, lat, lng float64) models.Place {
	lines := make([]string, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		lines = append(lines, fmt.Sprintf("%s: Open 24 hours", wd))
	}
	return models.Place{
		ID:           id,
		Name:         name,
		Location:     models.Coordinates{Latitude: lat, Longitude: lng},
		OpeningHours: &models.OpeningHours{WeekdayDescriptions: lines},
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestBuildItineraryValidation(t *testing.T) {
	p := NewPlanner(new(MockEventsRepository), new(MockPlacesClient), Config{}, zap.NewNop())

	tests := []struct {
		name string
		req  ItineraryRequest
	}{
		{
			name: "missing city",
			req:  ItineraryRequest{StartDate: day(2026, time.March, 2), EndDate: day(2026, time.March, 4)},
		},
		{
			name: "missing dates",
			req:  ItineraryRequest{City: "Taipei"},
		},
		{
			name: "end before start",
			req:  ItineraryRequest{City: "Taipei", StartDate: day(2026, time.March, 4), EndDate: day(2026, time.March, 2)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.BuildItinerary(context.Background(), tc.req)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestBuildItineraryEventFetchFailure(t *testing.T) {
	eventsRepo := new(MockEventsRepository)
	eventsRepo.On("FetchEventsForCity", mock.Anything, "Taipei", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("connection refused: %w", models.ErrUpstream)).Once()

	p := NewPlanner(eventsRepo, new(MockPlacesClient), Config{}, zap.NewNop())

	_, err := p.BuildItinerary(context.Background(), ItineraryRequest{
		City:      "Taipei",
		StartDate: day(2026, time.March, 2),
		EndDate:   day(2026, time.March, 4),
	})
	assert.ErrorIs(t, err, models.ErrUpstream)
	eventsRepo.AssertExpectations(t)
}

func TestBuildItineraryAttractionSearchFailure(t *testing.T) {
	eventsRepo := new(MockEventsRepository)
	eventsRepo.On("FetchEventsForCity", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Event{}, nil).Once()

	places := new(MockPlacesClient)
	places.On("SearchAttractionsByCity", mock.Anything, "Taipei", mock.Anything).
		Return(nil, errors.New("places api unavailable")).Once()

	p := NewPlanner(eventsRepo, places, Config{}, zap.NewNop())

	_, err := p.BuildItinerary(context.Background(), ItineraryRequest{
		City:      "Taipei",
		StartDate: day(2026, time.March, 2),
		EndDate:   day(2026, time.March, 4),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "places api unavailable")
}

func TestBuildItineraryFullPipeline(t *testing.T) {
	start := day(2026, time.March, 2) // a Monday
	end := day(2026, time.March, 4)

	event := models.Event{
		ID:        "ev1",
		Title:     "Spring Exhibition",
		Location:  models.Coordinates{Latitude: 25.033, Longitude: 121.565},
		StartDate: day(2026, time.March, 4),
		EndDate:   day(2026, time.March, 4),
	}

	eventsRepo := new(MockEventsRepository)
	eventsRepo.On("FetchEventsForCity", mock.Anything, "Taipei", start, end).
		Return([]models.Event{event}, nil).Once()

	// Four clustered attractions for the two event-free days plus one
	// nearby attraction for the event day.
	cityPool := []models.Place{
		alwaysOpen("a1", 25.0330, 121.5650),
		alwaysOpen("a2", 25.0340, 121.5660),
		alwaysOpen("a3", 25.0478, 121.5170),
		alwaysOpen("a4", 25.0480, 121.5175),
	}
	places := new(MockPlacesClient)
	places.On("SearchAttractionsByCity", mock.Anything, "Taipei", 4).
		Return(cityPool, nil).Once()
	places.On("SearchNearby", mock.Anything, mock.Anything, mock.Anything, CategoryAttraction, mock.Anything).
		Return([]models.Place{alwaysOpen("a5", 25.0335, 121.5652)}, nil)

	restaurants := []models.Place{
		openAllWeek("r1", "Din Tai Fung", 25.0335, 121.5645),
		openAllWeek("r2", "Beef Noodle House", 25.0337, 121.5648),
		openAllWeek("r3", "Hot Pot Corner", 25.0470, 121.5172),
		openAllWeek("r4", "Dumpling Bar", 25.0475, 121.5178),
		openAllWeek("r5", "Tea House", 25.0332, 121.5651),
		openAllWeek("r6", "Night Snacks", 25.0338, 121.5655),
	}
	places.On("SearchNearby", mock.Anything, mock.Anything, mock.Anything, CategoryRestaurant, mock.Anything).
		Return(restaurants, nil)

	hotel := openAllWeek("h1", "Garden Hotel", 25.0400, 121.5400)
	places.On("SearchNearby", mock.Anything, mock.Anything, mock.Anything, CategoryLodging, mock.Anything).
		Return([]models.Place{hotel}, nil)

	p := NewPlanner(eventsRepo, places, Config{}, zap.NewNop())

	itinerary, err := p.BuildItinerary(context.Background(), ItineraryRequest{
		City:      "Taipei",
		StartDate: start,
		EndDate:   end,
		Seed:      int64Ptr(11),
	})
	require.NoError(t, err)
	require.NotNil(t, itinerary)

	assert.NotEmpty(t, itinerary.ID)
	assert.Equal(t, "Taipei", itinerary.City)
	require.Len(t, itinerary.Days, 3)

	for i, d := range itinerary.Days {
		assert.Equal(t, start.AddDate(0, 0, i), d.Date)
		assert.Equal(t, d.Date.Weekday(), d.Weekday)
	}

	// The single event lands on its only covered day.
	assert.Equal(t, 1, itinerary.Days[2].EventCount())
	assert.Zero(t, itinerary.Days[0].EventCount())
	assert.Zero(t, itinerary.Days[1].EventCount())

	// On the event day the nearby attraction opens the schedule.
	require.NotEmpty(t, itinerary.Days[2].Slots)
	assert.Equal(t, models.SlotAttraction, itinerary.Days[2].Slots[0].Type)

	// No place is scheduled twice across the whole trip.
	seen := make(map[string]int)
	for _, d := range itinerary.Days {
		for _, item := range d.Slots {
			if item.Type == models.SlotAccommodation {
				continue // the same lodging repeats across its stay
			}
			seen[item.PlaceID()]++
		}
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "place %s scheduled %d times", id, count)
	}

	// Every event and attraction anchor is followed by a restaurant.
	for _, d := range itinerary.Days {
		for i, item := range d.Slots {
			if item.Type != models.SlotEvent && item.Type != models.SlotAttraction {
				continue
			}
			require.Greater(t, len(d.Slots), i+1, "anchor %s has no trailing slot", item.PlaceID())
			assert.Equal(t, models.SlotRestaurant, d.Slots[i+1].Type)
		}
	}

	// A three-day trip is one two-night stay with lodging on both nights.
	require.Len(t, itinerary.Stays, 1)
	stay := itinerary.Stays[0]
	assert.Equal(t, 0, stay.StartDay)
	assert.Equal(t, 2, stay.Nights)
	assert.Equal(t, 2, stay.EndDay)
	require.NotNil(t, stay.Accommodation)
	assert.Equal(t, "h1", stay.Accommodation.ID)

	for _, dayIdx := range []int{0, 1} {
		slots := itinerary.Days[dayIdx].Slots
		require.NotEmpty(t, slots)
		last := slots[len(slots)-1]
		assert.Equal(t, models.SlotAccommodation, last.Type)
		assert.Equal(t, "h1", last.PlaceID())
	}
}

func TestBuildItineraryDeterministicWithSeed(t *testing.T) {
	start := day(2026, time.March, 2)
	end := day(2026, time.March, 6)

	build := func() *models.Itinerary {
		eventsRepo := new(MockEventsRepository)
		eventsRepo.On("FetchEventsForCity", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]models.Event{
				{ID: "e1", StartDate: start, EndDate: end},
				{ID: "e2", StartDate: start, EndDate: end},
				{ID: "e3", StartDate: start, EndDate: end},
			}, nil).Once()

		places := new(MockPlacesClient)
		places.On("SearchAttractionsByCity", mock.Anything, mock.Anything, mock.Anything).
			Return([]models.Place{
				alwaysOpen("a1", 25.0330, 121.5650),
				alwaysOpen("a2", 25.0340, 121.5660),
				alwaysOpen("a3", 25.0350, 121.5670),
				alwaysOpen("a4", 25.0360, 121.5680),
				alwaysOpen("a5", 25.0370, 121.5690),
				alwaysOpen("a6", 25.0380, 121.5700),
			}, nil)
		places.On("SearchNearby", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]models.Place{}, nil)

		p := NewPlanner(eventsRepo, places, Config{}, zap.NewNop())
		itinerary, err := p.BuildItinerary(context.Background(), ItineraryRequest{
			City:      "Taipei",
			StartDate: start,
			EndDate:   end,
			Seed:      int64Ptr(99),
		})
		require.NoError(t, err)
		return itinerary
	}

	first, second := build(), build()

	shape := func(it *models.Itinerary) [][]string {
		out := make([][]string, len(it.Days))
		for i, d := range it.Days {
			for _, item := range d.Slots {
				out[i] = append(out[i], string(item.Type)+":"+item.PlaceID())
			}
		}
		return out
	}
	assert.Equal(t, shape(first), shape(second))
}
