package places

import "github.com/Amelia-H-hub/travel-planner/internal/app/models"

// Wire types for the Places API v1 search endpoints. Field names
// mirror the collaborator's JSON payloads.

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type locationRestriction struct {
	Circle circle `json:"circle"`
}

type nearbySearchRequest struct {
	IncludedTypes       []string            `json:"includedTypes,omitempty"`
	MaxResultCount      int                 `json:"maxResultCount"`
	LocationRestriction locationRestriction `json:"locationRestriction"`
}

type textSearchRequest struct {
	TextQuery string `json:"textQuery"`
	PageToken string `json:"pageToken,omitempty"`
}

type displayName struct {
	Text string `json:"text"`
}

type openingHoursPayload struct {
	WeekdayDescriptions []string `json:"weekdayDescriptions"`
}

type placePayload struct {
	ID                  string               `json:"id"`
	DisplayName         displayName          `json:"displayName"`
	FormattedAddress    string               `json:"formattedAddress"`
	Location            latLng               `json:"location"`
	RegularOpeningHours *openingHoursPayload `json:"regularOpeningHours,omitempty"`
}

type searchResponse struct {
	Places        []placePayload `json:"places"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
}

func (p placePayload) toModel() models.Place {
	place := models.Place{
		ID:      p.ID,
		Name:    p.DisplayName.Text,
		Address: p.FormattedAddress,
		Location: models.Coordinates{
			Latitude:  p.Location.Latitude,
			Longitude: p.Location.Longitude,
		},
	}
	if p.RegularOpeningHours != nil {
		place.OpeningHours = &models.OpeningHours{
			WeekdayDescriptions: p.RegularOpeningHours.WeekdayDescriptions,
		}
	}
	return place
}
