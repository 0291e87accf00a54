package schedule

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
)

const maxEventsPerDay = 2

// recommendedEventCount returns how many events the trip should carry:
// one for short trips, otherwise roughly one every other day, with one
// fewer on even-length trips.
func recommendedEventCount(tripDuration int) int {
	if tripDuration <= 2 {
		return 1
	}
	if tripDuration%2 == 0 {
		return tripDuration/2 - 1
	}
	return tripDuration / 2
}

// assignEvents picks the recommended events from the pool and spreads
// them over the trip days. It is a single forward pass: an event with
// no candidate day is dropped and replaced at most once from the
// leftover pool, so a day can end up with fewer events than targeted.
func (p *Planner) assignEvents(trip *tripContext, pool []models.Event, tripDuration int) {
	l := p.logger.With(zap.String("method", "assignEvents"), zap.String("city", trip.city))

	if len(pool) == 0 {
		l.Info("No events available for city")
		return
	}

	recommendNum := recommendedEventCount(tripDuration)
	if recommendNum > len(pool) {
		recommendNum = len(pool)
	}

	// Sample the recommended subset without replacement; everything
	// else becomes the replacement pool. Both sorted by end date so
	// soon-ending events get placed first.
	perm := trip.rng.Perm(len(pool))
	recommended := make([]models.Event, 0, recommendNum)
	others := make([]models.Event, 0, len(pool)-recommendNum)
	for i, idx := range perm {
		if i < recommendNum {
			recommended = append(recommended, pool[idx])
		} else {
			others = append(others, pool[idx])
		}
	}
	sortByEndDate(recommended)
	sortByEndDate(others)

	for i := 0; i < len(recommended); {
		event := recommended[i]

		candidates := candidateDayIndexes(trip, event)
		if len(candidates) == 0 {
			l.Info("Dropping event with no available day", zap.String("title", event.Title))
			recommended = append(recommended[:i], recommended[i+1:]...)

			// One bounded replacement attempt: draw from the leftover
			// pool an event ending strictly later than the dropped one.
			if replacement, ok := drawReplacement(trip, &others, event); ok {
				l.Info("Adding replacement event", zap.String("title", replacement.Title))
				recommended = append(recommended, replacement)
			}
			continue
		}

		chosen := chooseDay(trip, candidates)
		trip.days[chosen].Slots = append(trip.days[chosen].Slots, models.NewEventItem(event))
		i++
	}
}

func sortByEndDate(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EndDateOrSentinel().Before(events[j].EndDateOrSentinel())
	})
}

// candidateDayIndexes returns the trip days the event's date range
// covers that still have room for another event.
func candidateDayIndexes(trip *tripContext, event models.Event) []int {
	var candidates []int
	for i := range trip.days {
		if event.Covers(trip.days[i].Date) && trip.days[i].EventCount() < maxEventsPerDay {
			candidates = append(candidates, i)
		}
	}
	return candidates
}

// chooseDay prefers a day with no event yet; ties are broken uniformly
// at random from the request-scoped source.
func chooseDay(trip *tripContext, candidates []int) int {
	var empty []int
	for _, idx := range candidates {
		if trip.days[idx].EventCount() == 0 {
			empty = append(empty, idx)
		}
	}
	switch {
	case len(empty) == 1:
		return empty[0]
	case len(empty) > 1:
		return empty[trip.rng.Intn(len(empty))]
	default:
		return candidates[trip.rng.Intn(len(candidates))]
	}
}

// drawReplacement removes and returns a random event from others that
// ends strictly later than the dropped event.
func drawReplacement(trip *tripContext, others *[]models.Event, dropped models.Event) (models.Event, bool) {
	var eligible []int
	for i, e := range *others {
		if e.EndDateOrSentinel().After(dropped.EndDateOrSentinel()) {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return models.Event{}, false
	}

	idx := eligible[trip.rng.Intn(len(eligible))]
	replacement := (*others)[idx]
	*others = append((*others)[:idx], (*others)[idx+1:]...)
	return replacement, true
}
