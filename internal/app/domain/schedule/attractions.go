package schedule

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
	"github.com/Amelia-H-hub/travel-planner/internal/pkg/geo"
)

// daySlots holds a weekday's morning- and afternoon-suitable candidate
// attractions.
type daySlots struct {
	AM []models.Place
	PM []models.Place
}

// WeeklyAvailability indexes candidate attractions by weekday and
// AM/PM slot. It is built once per planning run and shrinks as pairs
// are picked.
type WeeklyAvailability map[time.Weekday]*daySlots

// buildWeeklyAvailability classifies every attraction into AM/PM
// buckets per weekday from its opening-hours descriptor. A place with
// no descriptor counts as open every day, both slots.
func buildWeeklyAvailability(attractions []models.Place) WeeklyAvailability {
	avail := make(WeeklyAvailability, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		avail[wd] = &daySlots{}
	}

	for _, a := range attractions {
		if a.OpeningHours == nil {
			for wd := time.Sunday; wd <= time.Saturday; wd++ {
				avail[wd].AM = append(avail[wd].AM, a)
				avail[wd].PM = append(avail[wd].PM, a)
			}
			continue
		}

		for _, line := range a.OpeningHours.WeekdayDescriptions {
			wd, desc, ok := splitWeekdayLine(line)
			if !ok {
				continue
			}
			for _, r := range parseDailyHours(desc) {
				if r.Start < amCutoffMinutes {
					avail[wd].AM = append(avail[wd].AM, a)
					break
				}
			}
			for _, r := range parseDailyHours(desc) {
				if r.End > pmCutoffMinutes {
					avail[wd].PM = append(avail[wd].PM, a)
					break
				}
			}
		}
	}
	return avail
}

// remove drops a place from every weekday and slot so it cannot be
// scheduled twice in one trip.
func (w WeeklyAvailability) remove(id string) {
	for _, slots := range w {
		slots.AM = withoutPlace(slots.AM, id)
		slots.PM = withoutPlace(slots.PM, id)
	}
}

func withoutPlace(places []models.Place, id string) []models.Place {
	out := places[:0]
	for _, p := range places {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// findDailyPair picks the AM/PM attraction pair for a weekday with the
// smallest great-circle distance not exceeding maxDistanceKm. On
// success both places are removed from the whole availability index.
// Returns false when either bucket is empty or no pair is close enough.
func findDailyPair(weekday time.Weekday, avail WeeklyAvailability, maxDistanceKm float64) (models.Place, models.Place, bool) {
	slots := avail[weekday]
	if slots == nil || len(slots.AM) == 0 || len(slots.PM) == 0 {
		return models.Place{}, models.Place{}, false
	}

	var bestAM, bestPM models.Place
	found := false
	minDist := math.Inf(1)
	for _, am := range slots.AM {
		for _, pm := range slots.PM {
			if am.ID == pm.ID {
				continue
			}
			dist := geo.HaversineDistanceKm(am.Location, pm.Location)
			if dist <= maxDistanceKm && dist < minDist {
				minDist = dist
				bestAM, bestPM = am, pm
				found = true
			}
		}
	}
	if !found {
		return models.Place{}, models.Place{}, false
	}

	avail.remove(bestAM.ID)
	avail.remove(bestPM.ID)
	return bestAM, bestPM, true
}

// assignAttractions fills event-free days with a morning/afternoon
// attraction pair and prepends one nearby attraction to single-event
// days. Days already holding two events get none.
func (p *Planner) assignAttractions(ctx context.Context, trip *tripContext) error {
	l := p.logger.With(zap.String("method", "assignAttractions"), zap.String("city", trip.city))

	freeDays := trip.eventFreeDayCount()
	var avail WeeklyAvailability
	if freeDays > 0 {
		pool, err := p.places.SearchAttractionsByCity(ctx, trip.city, freeDays*2)
		if err != nil {
			l.Error("Failed to fetch city attractions", zap.Error(err))
			return fmt.Errorf("fetching attractions for %s: %w", trip.city, err)
		}
		avail = buildWeeklyAvailability(pool)
	}

	for i := range trip.days {
		day := &trip.days[i]
		switch day.EventCount() {
		case 0:
			am, pm, ok := findDailyPair(day.Weekday, avail, p.cfg.MaxPairDistanceKm)
			if !ok {
				l.Warn("No attraction pair for day",
					zap.String("date", day.Date.Format("2006-01-02")),
					zap.String("weekday", day.Weekday.String()))
				continue
			}
			day.Slots = append(day.Slots,
				models.NewPlaceItem(models.SlotAttraction, am),
				models.NewPlaceItem(models.SlotAttraction, pm))
			trip.usedAttractionIDs[am.ID] = struct{}{}
			trip.usedAttractionIDs[pm.ID] = struct{}{}

		case 1:
			event := firstEvent(day)
			attraction, err := p.nearbyAttraction(ctx, trip, event.Location)
			if err != nil {
				if errors.Is(err, models.ErrNoCandidates) {
					l.Warn("No nearby attraction for event day",
						zap.String("date", day.Date.Format("2006-01-02")),
						zap.String("event", event.Title))
					continue
				}
				return err
			}
			// The attraction opens the day; the event follows it.
			day.Slots = append([]models.ScheduleItem{models.NewPlaceItem(models.SlotAttraction, attraction)}, day.Slots...)
			trip.usedAttractionIDs[attraction.ID] = struct{}{}
		}
	}
	return nil
}

func firstEvent(day *models.TripDay) *models.Event {
	for _, item := range day.Slots {
		if item.Type == models.SlotEvent {
			return item.Event
		}
	}
	return nil
}

// nearbyAttraction asks the collaborator for attractions around the
// event and returns the first not already used in this trip.
func (p *Planner) nearbyAttraction(ctx context.Context, trip *tripContext, center models.Coordinates) (models.Place, error) {
	exclude := make([]string, 0, len(trip.usedAttractionIDs))
	for id := range trip.usedAttractionIDs {
		exclude = append(exclude, id)
	}

	places, err := p.places.SearchNearby(ctx, center, p.cfg.NearbyAttractionRadiusM, CategoryAttraction, exclude)
	if err != nil {
		return models.Place{}, fmt.Errorf("searching nearby attractions: %w", err)
	}
	for _, place := range places {
		if _, used := trip.usedAttractionIDs[place.ID]; !used && place.ID != "" {
			return place, nil
		}
	}
	return models.Place{}, models.ErrNoCandidates
}
