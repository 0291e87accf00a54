package models

import "time"

// EndDateSentinel sorts events without an end date after every dated
// event.
var EndDateSentinel = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// Event is a dated, time-bounded occurrence (festival, exhibition, ...)
// tied to a city.
type Event struct {
	ID        string      `json:"id"`
	Country   string      `json:"country,omitempty"`
	City      string      `json:"city,omitempty"`
	Title     string      `json:"title"`
	ImageURL  string      `json:"img,omitempty"`
	Address   string      `json:"address,omitempty"`
	Location  Coordinates `json:"location"`
	StartDate time.Time   `json:"start_date"`
	EndDate   time.Time   `json:"end_date"`
}

// EndDateOrSentinel returns the event's end date, or the far-future
// sentinel when the event carries none.
func (e Event) EndDateOrSentinel() time.Time {
	if e.EndDate.IsZero() {
		return EndDateSentinel
	}
	return e.EndDate
}

// Covers reports whether date falls within [StartDate, EndDate],
// comparing calendar days.
func (e Event) Covers(date time.Time) bool {
	day := date.Truncate(24 * time.Hour)
	return !day.Before(e.StartDate.Truncate(24*time.Hour)) &&
		!day.After(e.EndDateOrSentinel().Truncate(24*time.Hour))
}
