// internal/api/restaurants.go
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "macromaps/internal/common/errors"
)

type listParams struct {
	latitude  float64
	longitude float64
	page      int
	limit     int
	radiusKm  float64
	sortBy    string
	sortOrder string
}

// parseListParams validates the shared listing query parameters. The
// second return value is a ready-to-send error message when validation
// fails.
func parseListParams(c *gin.Context, defaultLimit int, defaultSort string) (listParams, string) {
	p := listParams{
		page:      1,
		limit:     defaultLimit,
		radiusKm:  10.0,
		sortBy:    defaultSort,
		sortOrder: "asc",
	}

	latStr, lngStr := c.Query("latitude"), c.Query("longitude")
	if latStr == "" || lngStr == "" {
		return p, "Missing required parameters: latitude and longitude"
	}

	var err error
	if p.latitude, err = strconv.ParseFloat(latStr, 64); err != nil {
		return p, "latitude must be a number"
	}
	if p.longitude, err = strconv.ParseFloat(lngStr, 64); err != nil {
		return p, "longitude must be a number"
	}

	if v := c.Query("page"); v != "" {
		if p.page, err = strconv.Atoi(v); err != nil || p.page < 1 {
			return p, "Page must be >= 1"
		}
	}
	if v := c.Query("limit"); v != "" {
		if p.limit, err = strconv.Atoi(v); err != nil || p.limit < 1 || p.limit > 100 {
			return p, "Limit must be between 1 and 100"
		}
	}
	if v := c.Query("radius"); v != "" {
		if p.radiusKm, err = strconv.ParseFloat(v, 64); err != nil || p.radiusKm < 0.1 || p.radiusKm > 50 {
			return p, "Radius must be between 0.1 and 50 km"
		}
	}
	if v := c.Query("sort_by"); v != "" {
		p.sortBy = v
	}
	if v := c.Query("sort_order"); v != "" {
		if v != "asc" && v != "desc" {
			return p, "sort_order must be 'asc' or 'desc'"
		}
		p.sortOrder = v
	}

	return p, ""
}

var validRestaurantSorts = map[string]bool{
	"distance":      true,
	"rating":        true,
	"reviews_count": true,
	"name":          true,
}

// handleListRestaurants returns restaurants within radius of the point,
// paginated and sorted.
func (s *Server) handleListRestaurants(c *gin.Context) {
	params, errMsg := parseListParams(c, 20, "distance")
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}
	if !validRestaurantSorts[params.sortBy] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort_by. Must be one of: distance, rating, reviews_count, name"})
		return
	}

	restaurants, err := s.restaurants.WithinRadius(
		c.Request.Context(), params.latitude, params.longitude, params.radiusKm, false)
	if err != nil {
		s.logger.Error("restaurant listing failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	sortRestaurants(restaurants, params.sortBy)

	total := len(restaurants)
	start, end := pageBounds(total, params.page, params.limit)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       restaurants[start:end],
		"pagination": paginate(total, params.page, params.limit),
		"search_params": gin.H{
			"latitude":  params.latitude,
			"longitude": params.longitude,
			"radius_km": params.radiusKm,
			"sort_by":   params.sortBy,
		},
	})
}

// handleGetRestaurant returns one restaurant by row UUID or place id.
func (s *Server) handleGetRestaurant(c *gin.Context) {
	id := c.Param("id")

	restaurant, err := s.restaurants.GetByID(c.Request.Context(), id)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeRestaurantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
			return
		}
		s.logger.Error("restaurant lookup failed", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	menus, err := s.menus.ListByPlaceIDs(c.Request.Context(), []string{restaurant.PlaceID})
	if err != nil {
		s.logger.Warn("menu lookup failed", map[string]interface{}{
			"placeId": restaurant.PlaceID,
			"error":   err.Error(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       restaurant,
		"menu_items": menus[restaurant.PlaceID],
	})
}
