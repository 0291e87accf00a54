package models

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// OpeningHours carries the per-weekday free-text opening descriptions as
// returned by the places collaborator, e.g.
// "Monday: 9:00 AM – 5:00 PM, 7:00 PM – 10:00 PM".
type OpeningHours struct {
	WeekdayDescriptions []string `json:"weekdayDescriptions"`
}

// Place is a point of interest usable as an attraction, restaurant or
// accommodation. A nil OpeningHours means the place is treated as open
// every day, all slots.
type Place struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Address      string        `json:"address,omitempty"`
	ImageURL     string        `json:"img,omitempty"`
	Location     Coordinates   `json:"location"`
	OpeningHours *OpeningHours `json:"regularOpeningHours,omitempty"`
}
