// internal/models/restaurant.go
package models

import "time"

// Status tracks a restaurant's menu-processing lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusFinished   Status = "finished"
	StatusError      Status = "error"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusFinished, StatusError:
		return true
	}
	return false
}

// Terminal reports whether s is an end state of the lifecycle.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusError
}

// OpeningHours is a single day entry as returned by the places scraper.
type OpeningHours struct {
	Day   string `json:"day"`
	Hours string `json:"hours"`
}

// Restaurant is a scraped place persisted to the restaurants table.
// PlaceID is the scraper's stable identifier; ID is our row UUID.
type Restaurant struct {
	ID            string         `json:"id"`
	PlaceID       string         `json:"placeId"`
	Name          string         `json:"name"`
	Address       string         `json:"address"`
	Category      string         `json:"category"`
	Phone         string         `json:"phone,omitempty"`
	Website       string         `json:"website,omitempty"`
	PriceLevel    string         `json:"priceLevel,omitempty"`
	Rating        *float64       `json:"rating"`
	ReviewsCount  int            `json:"reviewsCount"`
	Latitude      float64        `json:"latitude"`
	Longitude     float64        `json:"longitude"`
	OpeningHours  []OpeningHours `json:"openingHours,omitempty"`
	ImageURLs     []string       `json:"imageUrls"`
	GoogleMapsURL string         `json:"url,omitempty"`
	Status        Status         `json:"processing_status"`
	StatusDetail  string         `json:"status_detail,omitempty"`
	DistanceKm    *float64       `json:"distance_km,omitempty"`
	CreatedAt     time.Time      `json:"created_at,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at,omitempty"`
}

// Location is a coordinate pair as the API exposes it.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LatLng returns the restaurant coordinates in API shape.
func (r *Restaurant) LatLng() Location {
	return Location{Lat: r.Latitude, Lng: r.Longitude}
}
