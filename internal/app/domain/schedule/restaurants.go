package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
)

// assignRestaurants inserts a restaurant slot right after every event
// and attraction slot. The first such anchor of a day eats lunch, every
// later one dinner. Insertions happen in reverse index order so earlier
// inserts do not shift anchors not yet processed.
func (p *Planner) assignRestaurants(ctx context.Context, trip *tripContext) error {
	l := p.logger.With(zap.String("method", "assignRestaurants"), zap.String("city", trip.city))

	type insertion struct {
		index int
		item  models.ScheduleItem
	}

	for d := range trip.days {
		day := &trip.days[d]

		var insertions []insertion
		anchorSeen := false
		for i, item := range day.Slots {
			if item.Type != models.SlotEvent && item.Type != models.SlotAttraction {
				continue
			}

			window := lunchWindow
			if anchorSeen {
				window = dinnerWindow
			}
			anchorSeen = true

			restaurant, err := p.recommendRestaurant(ctx, trip, item.Coordinates(), day.Weekday, window)
			if err != nil {
				return err
			}
			if restaurant == nil {
				l.Warn("No restaurant found near activity",
					zap.String("date", day.Date.Format("2006-01-02")),
					zap.String("anchor", item.PlaceID()))
				continue
			}

			insertions = append(insertions, insertion{index: i + 1, item: models.NewPlaceItem(models.SlotRestaurant, *restaurant)})
			trip.usedRestaurantIDs[restaurant.ID] = struct{}{}
		}

		for i := len(insertions) - 1; i >= 0; i-- {
			ins := insertions[i]
			day.Slots = append(day.Slots[:ins.index],
				append([]models.ScheduleItem{ins.item}, day.Slots[ins.index:]...)...)
		}
	}
	return nil
}

// recommendRestaurant searches around the anchor with a widening
// radius, stopping at the first radius that yields at least one
// restaurant open during the meal window, not yet used in this trip and
// not matching the denylist. One of the survivors is then chosen
// uniformly at random. A nil result means the radius ceiling was
// reached without a match.
func (p *Planner) recommendRestaurant(ctx context.Context, trip *tripContext, center models.Coordinates, weekday time.Weekday, window TimeRange) (*models.Place, error) {
	exclude := make([]string, 0, len(trip.usedRestaurantIDs))
	for id := range trip.usedRestaurantIDs {
		exclude = append(exclude, id)
	}

	for radius := p.cfg.RestaurantInitialRadiusM; radius <= p.cfg.RestaurantMaxRadiusM; radius += p.cfg.RestaurantRadiusStepM {
		restaurants, err := p.places.SearchNearby(ctx, center, radius, CategoryRestaurant, exclude)
		if err != nil {
			return nil, fmt.Errorf("searching nearby restaurants: %w", err)
		}

		var matches []models.Place
		for _, r := range restaurants {
			if p.restaurantMatches(trip, r, weekday, window) {
				matches = append(matches, r)
			}
		}
		if len(matches) > 0 {
			chosen := matches[trip.rng.Intn(len(matches))]
			return &chosen, nil
		}
	}
	return nil, nil
}

// restaurantMatches applies the meal-window, uniqueness and denylist
// filters. A restaurant without opening hours is never recommended.
func (p *Planner) restaurantMatches(trip *tripContext, r models.Place, weekday time.Weekday, window TimeRange) bool {
	if r.ID == "" || r.OpeningHours == nil {
		return false
	}
	if _, used := trip.usedRestaurantIDs[r.ID]; used {
		return false
	}
	if p.denylist != nil && len(p.denylist.FindAll(r.Name)) > 0 {
		return false
	}

	desc, ok := weekdayDescription(r.OpeningHours, weekday)
	if !ok {
		return false
	}
	if strings.Contains(normalizeHours(desc), open24HoursMarker) {
		return true
	}
	return isOpenDuring(desc, window)
}
