// internal/models/pipeline.go
package models

import "time"

// ImageClassification is the structured verdict for one candidate image.
// Ephemeral: produced and consumed within a single pipeline run.
type ImageClassification struct {
	ImageURL        string `json:"image_url"`
	IsMenu          bool   `json:"is_menu"`
	ConfidenceLevel string `json:"confidence_level"` // high, medium or low
	Reasoning       string `json:"reasoning"`
	ImageType       string `json:"image_type"` // menu, food_photo, interior, ...
}

// MenuAnalysis is the extraction result for one confirmed menu image.
type MenuAnalysis struct {
	ImageURL  string     `json:"image_url"`
	MenuItems []MenuItem `json:"menu_items"`
}

// ProcessingResult summarizes one restaurant's pipeline run.
type ProcessingResult struct {
	PlaceID         string        `json:"place_id"`
	TotalImages     int           `json:"total_images"`
	MenuImagesFound int           `json:"menu_images_found"`
	TotalMenuItems  int           `json:"total_menu_items"`
	ProcessingTime  time.Duration `json:"processing_time"`
	Error           string        `json:"error,omitempty"`
}

// Failed reports whether the run ended in the error state.
func (r ProcessingResult) Failed() bool { return r.Error != "" }

// BatchSummary aggregates a full driver run for logging and API responses.
type BatchSummary struct {
	TotalRestaurants      int                         `json:"total_restaurants"`
	SuccessfulRestaurants int                         `json:"successful_restaurants"`
	TotalMenuItems        int                         `json:"total_menu_items_extracted"`
	Elapsed               time.Duration               `json:"-"`
	Results               map[string]ProcessingResult `json:"details"`
}

// Summarize builds a BatchSummary from a result map.
func Summarize(results map[string]ProcessingResult, elapsed time.Duration) BatchSummary {
	s := BatchSummary{
		TotalRestaurants: len(results),
		Elapsed:          elapsed,
		Results:          results,
	}
	for _, r := range results {
		if !r.Failed() {
			s.SuccessfulRestaurants++
			s.TotalMenuItems += r.TotalMenuItems
		}
	}
	return s
}
