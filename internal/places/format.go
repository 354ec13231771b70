// internal/places/format.go
package places

import (
	"github.com/google/uuid"

	"macromaps/internal/models"
)

// placeRecord is the raw actor dataset item. Only the fields the service
// consumes are declared; the actor emits many more.
type placeRecord struct {
	Title        string  `json:"title"`
	Address      string  `json:"address"`
	TotalScore   float64 `json:"totalScore"`
	ReviewsCount int     `json:"reviewsCount"`
	CategoryName string  `json:"categoryName"`
	Phone        string  `json:"phone"`
	Website      string  `json:"website"`
	PriceLevel   string  `json:"priceLevel"`
	OpeningHours []struct {
		Day   string `json:"day"`
		Hours string `json:"hours"`
	} `json:"openingHours"`
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	PlaceID   string   `json:"placeId"`
	URL       string   `json:"url"`
	ImageURLs []string `json:"imageUrls"`
}

// formatRestaurants normalizes raw dataset items into restaurant records.
// Records without a place id are dropped: nothing downstream can key them.
func formatRestaurants(records []placeRecord) []models.Restaurant {
	restaurants := make([]models.Restaurant, 0, len(records))
	for _, rec := range records {
		if rec.PlaceID == "" {
			continue
		}

		r := models.Restaurant{
			ID:            uuid.NewString(),
			PlaceID:       rec.PlaceID,
			Name:          rec.Title,
			Address:       rec.Address,
			Category:      rec.CategoryName,
			Phone:         rec.Phone,
			Website:       rec.Website,
			PriceLevel:    rec.PriceLevel,
			ReviewsCount:  rec.ReviewsCount,
			Latitude:      rec.Location.Lat,
			Longitude:     rec.Location.Lng,
			GoogleMapsURL: rec.URL,
			ImageURLs:     rec.ImageURLs,
			Status:        models.StatusPending,
		}

		if rec.TotalScore > 0 {
			score := rec.TotalScore
			r.Rating = &score
		}

		for _, oh := range rec.OpeningHours {
			r.OpeningHours = append(r.OpeningHours, models.OpeningHours{Day: oh.Day, Hours: oh.Hours})
		}

		if r.Name == "" {
			r.Name = "Unknown"
		}

		restaurants = append(restaurants, r)
	}
	return restaurants
}
