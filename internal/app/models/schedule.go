package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SlotType discriminates the variants of a schedule slot.
type SlotType string

const (
	SlotEvent         SlotType = "event"
	SlotAttraction    SlotType = "attraction"
	SlotRestaurant    SlotType = "restaurant"
	SlotAccommodation SlotType = "accommodation"
)

// ScheduleItem is one slot of a trip day. Exactly one of Event or Place
// is set: Event for SlotEvent, Place for every other type.
type ScheduleItem struct {
	Type  SlotType `json:"type"`
	Event *Event   `json:"-"`
	Place *Place   `json:"-"`
}

// NewEventItem wraps an event as a schedule slot.
func NewEventItem(e Event) ScheduleItem {
	return ScheduleItem{Type: SlotEvent, Event: &e}
}

// NewPlaceItem wraps a place as a schedule slot of the given type.
func NewPlaceItem(t SlotType, p Place) ScheduleItem {
	return ScheduleItem{Type: t, Place: &p}
}

// PlaceID returns the unique id of the underlying event or place.
func (s ScheduleItem) PlaceID() string {
	if s.Event != nil {
		return s.Event.ID
	}
	if s.Place != nil {
		return s.Place.ID
	}
	return ""
}

// Coordinates returns the location of the underlying event or place.
func (s ScheduleItem) Coordinates() Coordinates {
	if s.Event != nil {
		return s.Event.Location
	}
	if s.Place != nil {
		return s.Place.Location
	}
	return Coordinates{}
}

// MarshalJSON serializes the slot as {"type": ..., "value": ...}, the
// shape the itinerary client consumes.
func (s ScheduleItem) MarshalJSON() ([]byte, error) {
	var value interface{}
	switch {
	case s.Event != nil:
		value = s.Event
	case s.Place != nil:
		value = s.Place
	default:
		return nil, fmt.Errorf("schedule item of type %q has no value", s.Type)
	}
	return json.Marshal(struct {
		Type  SlotType    `json:"type"`
		Value interface{} `json:"value"`
	}{Type: s.Type, Value: value})
}

// TripDay is one calendar day of the trip with its ordered activity
// slots. Slot order is chronological within the day.
type TripDay struct {
	Date    time.Time      `json:"-"`
	Weekday time.Weekday   `json:"-"`
	Slots   []ScheduleItem `json:"data"`
}

// MarshalJSON renders the day with the date and weekday formats the
// client expects.
func (d TripDay) MarshalJSON() ([]byte, error) {
	slots := d.Slots
	if slots == nil {
		slots = []ScheduleItem{}
	}
	return json.Marshal(struct {
		Date    string         `json:"date"`
		Weekday string         `json:"weekday"`
		Slots   []ScheduleItem `json:"data"`
	}{
		Date:    d.Date.Format("2006-01-02"),
		Weekday: d.Weekday.String(),
		Slots:   slots,
	})
}

// EventCount returns the number of event slots scheduled for the day.
func (d TripDay) EventCount() int {
	n := 0
	for _, item := range d.Slots {
		if item.Type == SlotEvent {
			n++
		}
	}
	return n
}

// Stay is a contiguous block of nights assigned one lodging.
// Accommodation is nil when no lodging could be found for the block.
type Stay struct {
	StartDay      int    `json:"start_day_idx"`
	Nights        int    `json:"nights"`
	EndDay        int    `json:"end_day_idx"`
	Accommodation *Place `json:"accommodation,omitempty"`
}

// Itinerary is the full output of one planning run.
type Itinerary struct {
	ID        string    `json:"id"`
	City      string    `json:"city"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Days      []TripDay `json:"days"`
	Stays     []Stay    `json:"stays,omitempty"`
}
