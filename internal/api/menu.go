// internal/api/menu.go
package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// handleListMenuItems returns menu items of finished restaurants within
// radius, each annotated with its restaurant and distance, sorted by a
// plain field or a nutritional ratio like "protein/calories".
func (s *Server) handleListMenuItems(c *gin.Context) {
	params, errMsg := parseListParams(c, 20, "restaurant_distance")
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	if strings.Contains(params.sortBy, "/") {
		if _, _, ok := parseRatioSort(params.sortBy); !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid ratio fields. Both numerator and denominator must be one of: protein, carbs, fat, fiber, sugar, sodium, calories, price",
			})
			return
		}
	} else if !validMenuSortFields[params.sortBy] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid sort_by. Must be a field name, restaurant_distance, or a ratio like 'protein/fat'",
		})
		return
	}

	items, err := s.menus.WithinRadius(c.Request.Context(), params.latitude, params.longitude, params.radiusKm)
	if err != nil {
		s.logger.Error("menu listing failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	restaurantID := c.Query("restaurant_id")
	if restaurantID != "" {
		filtered := items[:0]
		for _, item := range items {
			if item.PlaceID == restaurantID {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	sortMenuItems(items, params.sortBy, params.sortOrder)

	total := len(items)
	start, end := pageBounds(total, params.page, params.limit)

	searchParams := gin.H{
		"latitude":   params.latitude,
		"longitude":  params.longitude,
		"radius_km":  params.radiusKm,
		"sort_by":    params.sortBy,
		"sort_order": params.sortOrder,
	}
	if restaurantID != "" {
		searchParams["restaurant_id"] = restaurantID
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"data":          items[start:end],
		"pagination":    paginate(total, params.page, params.limit),
		"search_params": searchParams,
	})
}
