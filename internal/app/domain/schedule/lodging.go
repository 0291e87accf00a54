package schedule

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Amelia-H-hub/travel-planner/internal/app/models"
	"github.com/Amelia-H-hub/travel-planner/internal/pkg/geo"
)

const minNightsPerStay = 2

// compositionsWithMin enumerates every way to split n nights into
// exactly k ordered positive parts, each at least minNights. The
// enumeration is deterministic: first part ascending, then recursively
// the rest, so ties on dispersion always resolve the same way.
func compositionsWithMin(n, k, minNights int) [][]int {
	if k <= 0 {
		return nil
	}
	remaining := n - minNights*k
	if remaining < 0 {
		return nil
	}

	var out [][]int
	var rec func(remaining, partsLeft int, prefix []int)
	rec = func(remaining, partsLeft int, prefix []int) {
		if partsLeft == 1 {
			part := make([]int, len(prefix)+1)
			copy(part, prefix)
			part[len(prefix)] = remaining + minNights
			out = append(out, part)
			return
		}
		for i := 0; i <= remaining; i++ {
			rec(remaining-i, partsLeft-1, append(prefix, i+minNights))
		}
	}
	rec(remaining, k, nil)
	return out
}

// gatherStayPoints collects the representative coordinates of a stay
// starting at day startIdx and spanning nights nights: the last
// activity before the first night, the first (and, when present, last)
// activity of every interior day, and the first activity of the
// morning after the stay ends.
func gatherStayPoints(days []models.TripDay, startIdx, nights int) []models.Coordinates {
	var points []models.Coordinates

	appendSlot := func(item models.ScheduleItem) {
		points = append(points, item.Coordinates())
	}

	if startIdx >= 0 && startIdx < len(days) && len(days[startIdx].Slots) > 0 {
		appendSlot(days[startIdx].Slots[len(days[startIdx].Slots)-1])
	}

	for d := startIdx + 1; d < startIdx+nights && d < len(days); d++ {
		slots := days[d].Slots
		if len(slots) == 0 {
			continue
		}
		appendSlot(slots[0])
		if len(slots) > 1 {
			appendSlot(slots[len(slots)-1])
		}
	}

	if end := startIdx + nights; end < len(days) && len(days[end].Slots) > 0 {
		appendSlot(days[end].Slots[0])
	}

	return points
}

// assignLodging partitions the trip's nights into contiguous stays,
// picks the partition with the least total geographic dispersion and
// books one lodging per stay near the centroid of its activities. A
// single-day trip gets no lodging.
func (p *Planner) assignLodging(ctx context.Context, trip *tripContext, tripDuration int) ([]models.Stay, error) {
	l := p.logger.With(zap.String("method", "assignLodging"), zap.String("city", trip.city))

	if tripDuration < 2 {
		return nil, nil
	}
	nights := tripDuration - 1
	stayCount := max(1, tripDuration/3)

	compositions := compositionsWithMin(nights, stayCount, minNightsPerStay)
	if len(compositions) == 0 {
		compositions = compositionsWithMin(nights, stayCount, 1)
	}
	if len(compositions) == 0 {
		l.Warn("No night partition possible", zap.Int("nights", nights), zap.Int("stays", stayCount))
		return nil, nil
	}

	best := chooseComposition(trip.days, compositions)

	stays := make([]models.Stay, 0, len(best))
	cursor := 0
	for _, stayNights := range best {
		stay := models.Stay{StartDay: cursor, Nights: stayNights, EndDay: cursor + stayNights}

		points := gatherStayPoints(trip.days, cursor, stayNights)
		center, err := geo.Centroid(points)
		if err != nil {
			// A stay with no representative activity has no meaningful
			// search center; it keeps its nights but gets no lodging.
			l.Warn("Stay has no representative points, skipping lodging lookup",
				zap.Int("startDay", cursor), zap.Int("nights", stayNights))
			stays = append(stays, stay)
			cursor += stayNights
			continue
		}

		lodging, err := p.nearbyLodging(ctx, trip, center)
		if err != nil {
			return nil, err
		}
		if lodging == nil {
			l.Warn("No lodging found for stay",
				zap.Int("startDay", cursor), zap.Int("nights", stayNights))
			stays = append(stays, stay)
			cursor += stayNights
			continue
		}

		stay.Accommodation = lodging
		trip.usedLodgingIDs[lodging.ID] = struct{}{}
		for d := cursor; d < cursor+stayNights && d < len(trip.days); d++ {
			trip.days[d].Slots = append(trip.days[d].Slots, models.NewPlaceItem(models.SlotAccommodation, *lodging))
		}

		stays = append(stays, stay)
		cursor += stayNights
	}
	return stays, nil
}

// chooseComposition scores each candidate partition by the summed
// average pairwise distance of its stays' representative points and
// returns the first strict minimum in enumeration order.
func chooseComposition(days []models.TripDay, compositions [][]int) []int {
	best := compositions[0]
	bestScore := math.Inf(1)

	for _, composition := range compositions {
		total := 0.0
		cursor := 0
		for _, stayNights := range composition {
			total += geo.AveragePairwiseDistanceKm(gatherStayPoints(days, cursor, stayNights))
			cursor += stayNights
		}
		if total < bestScore {
			bestScore = total
			best = composition
		}
	}
	return best
}

// nearbyLodging returns the first lodging around the centroid not yet
// booked for an earlier stay of this trip, or nil when none exists.
func (p *Planner) nearbyLodging(ctx context.Context, trip *tripContext, center models.Coordinates) (*models.Place, error) {
	exclude := make([]string, 0, len(trip.usedLodgingIDs))
	for id := range trip.usedLodgingIDs {
		exclude = append(exclude, id)
	}

	places, err := p.places.SearchNearby(ctx, center, p.cfg.LodgingRadiusM, CategoryLodging, exclude)
	if err != nil {
		return nil, fmt.Errorf("searching nearby lodging: %w", err)
	}
	for _, place := range places {
		if _, used := trip.usedLodgingIDs[place.ID]; !used && place.ID != "" {
			return &place, nil
		}
	}
	return nil, nil
}
