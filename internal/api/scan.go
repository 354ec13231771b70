// internal/api/scan.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"macromaps/internal/models"
)

type scanRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Radius    *float64 `json:"radius"`
}

type scannedRestaurant struct {
	Name             string                `json:"name"`
	Address          string                `json:"address"`
	Rating           *float64              `json:"rating"`
	ReviewsCount     int                   `json:"reviewsCount"`
	Category         string                `json:"category"`
	Phone            string                `json:"phone"`
	Website          string                `json:"website"`
	PriceLevel       string                `json:"priceLevel"`
	OpeningHours     []models.OpeningHours `json:"openingHours"`
	Location         models.Location       `json:"location"`
	PlaceID          string                `json:"placeId"`
	URL              string                `json:"url"`
	DistanceKm       *float64              `json:"distance_km"`
	ImageURLs        []string              `json:"imageUrls"`
	ProcessingStatus string                `json:"processing_status"`
	MenuItems        []models.MenuItem     `json:"menuItems"`
	HasMenuItems     bool                  `json:"has_menu_items"`
}

type scanResponse struct {
	Success        bool                `json:"success"`
	Message        string              `json:"message"`
	Restaurants    []scannedRestaurant `json:"restaurants"`
	SearchLocation struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		RadiusKm  float64 `json:"radius_km"`
	} `json:"searchLocation"`
	ProcessingSummary struct {
		TotalRestaurants    int `json:"total_restaurants"`
		RestaurantsWithMenu int `json:"restaurants_with_menu"`
	} `json:"processing_summary"`
	BackgroundProcessing struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"background_processing"`
	DataSource string `json:"data_source"`
}

// handleScanNearby returns the finished restaurants around the point with
// their menus attached, and kicks off background extraction when the area
// is thin. The rendered body is cached briefly so repeat scans of the same
// spot skip the database.
func (s *Server) handleScanNearby(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing latitude or longitude in request"})
		return
	}

	latitude, longitude := *req.Latitude, *req.Longitude
	radiusKm := s.config.Scan.DefaultRadiusKm
	if req.Radius != nil && *req.Radius > 0 {
		radiusKm = *req.Radius
	}

	if body, ok := s.cache.Get(c.Request.Context(), latitude, longitude, radiusKm); ok {
		c.Data(http.StatusOK, "application/json", body)
		return
	}

	finished, err := s.restaurants.WithinRadius(c.Request.Context(), latitude, longitude, radiusKm, true)
	if err != nil {
		s.logger.Error("scan radius query failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	placeIDs := make([]string, len(finished))
	for i, r := range finished {
		placeIDs[i] = r.PlaceID
	}

	menus, err := s.menus.ListByPlaceIDs(c.Request.Context(), placeIDs)
	if err != nil {
		s.logger.Warn("menu lookup failed", map[string]interface{}{"error": err.Error()})
		menus = map[string][]models.MenuItem{}
	}

	resp := scanResponse{Success: true}
	resp.SearchLocation.Latitude = latitude
	resp.SearchLocation.Longitude = longitude
	resp.SearchLocation.RadiusKm = radiusKm
	resp.Restaurants = make([]scannedRestaurant, 0, len(finished))

	for _, r := range finished {
		items := menus[r.PlaceID]
		if items == nil {
			items = []models.MenuItem{}
		}
		resp.Restaurants = append(resp.Restaurants, scannedRestaurant{
			Name:             r.Name,
			Address:          r.Address,
			Rating:           r.Rating,
			ReviewsCount:     r.ReviewsCount,
			Category:         r.Category,
			Phone:            r.Phone,
			Website:          r.Website,
			PriceLevel:       r.PriceLevel,
			OpeningHours:     r.OpeningHours,
			Location:         models.Location{Lat: r.Latitude, Lng: r.Longitude},
			PlaceID:          r.PlaceID,
			URL:              r.GoogleMapsURL,
			DistanceKm:       r.DistanceKm,
			ImageURLs:        r.ImageURLs,
			ProcessingStatus: string(models.StatusFinished),
			MenuItems:        items,
			HasMenuItems:     len(items) > 0,
		})
		if len(items) > 0 {
			resp.ProcessingSummary.RestaurantsWithMenu++
		}
	}
	resp.ProcessingSummary.TotalRestaurants = len(resp.Restaurants)
	resp.Message = fmt.Sprintf("Found %d cached restaurants within %.1fkm", len(resp.Restaurants), radiusKm)

	if len(resp.Restaurants) > 0 {
		resp.DataSource = "cached"
	} else {
		resp.DataSource = "none"
	}

	if len(resp.Restaurants) <= s.config.Scan.BackgroundThreshold {
		go s.backgroundExtraction(latitude, longitude, radiusKm)
		resp.BackgroundProcessing.Status = "started"
		resp.BackgroundProcessing.Message = "Background extraction and processing started"
	} else {
		resp.BackgroundProcessing.Status = "skipped"
		resp.BackgroundProcessing.Message = fmt.Sprintf(
			"Background processing skipped - %d restaurants already cached", len(resp.Restaurants))
	}

	body, err := json.Marshal(resp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	s.cache.Set(c.Request.Context(), latitude, longitude, radiusKm, body)
	c.Data(http.StatusOK, "application/json", body)
}

// backgroundExtraction runs the scraper for the point, upserts what it
// finds and submits the places that are not already finished or being
// processed to the pipeline. Detached from the request: the scan response
// has already been sent. On completion the cached scan body for this point
// is dropped so the next scan sees the new menus.
func (s *Server) backgroundExtraction(latitude, longitude, radiusKm float64) {
	ctx := context.Background()

	scraped, err := s.extractor.ExtractNearby(ctx, latitude, longitude)
	if err != nil {
		s.logger.Error("background extraction failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if len(scraped) == 0 {
		s.logger.Info("background extraction found no places", nil)
		return
	}

	saved, err := s.restaurants.Upsert(ctx, scraped)
	if err != nil {
		s.logger.Error("background upsert failed", map[string]interface{}{
			"saved": saved,
			"error": err.Error(),
		})
		return
	}

	placeIDs := make([]string, len(scraped))
	for i, r := range scraped {
		placeIDs[i] = r.PlaceID
	}

	statuses, err := s.restaurants.StatusMap(ctx, placeIDs)
	if err != nil {
		s.logger.Error("background status lookup failed", map[string]interface{}{"error": err.Error()})
		return
	}

	var toProcess []string
	for _, id := range placeIDs {
		switch statuses[id] {
		case models.StatusFinished, models.StatusProcessing:
			// already done or in flight, never re-submit
		default:
			toProcess = append(toProcess, id)
		}
	}
	if len(toProcess) == 0 {
		s.logger.Info("background extraction: nothing to process", map[string]interface{}{"saved": saved})
		return
	}

	if _, err := s.runner.ProcessBatch(ctx, toProcess, 0); err != nil {
		s.logger.Error("background pipeline run failed", map[string]interface{}{"error": err.Error()})
		return
	}
	s.cache.Invalidate(ctx, latitude, longitude, radiusKm)
}
