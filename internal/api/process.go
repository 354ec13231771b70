// internal/api/process.go
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type processRequest struct {
	RestaurantIDs []string `json:"restaurant_ids"`
	Background    bool     `json:"background"`
	MaxWorkers    int      `json:"max_workers"`
}

// handleProcessMenus runs the batch pipeline for the given place ids, or
// for every pending restaurant when none are given. Synchronous calls
// return the per-restaurant summary; background calls return immediately.
func (s *Server) handleProcessMenus(c *gin.Context) {
	var req processRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}
	if req.MaxWorkers < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_workers must be >= 0"})
		return
	}

	if req.Background {
		go func() {
			if _, err := s.runner.ProcessBatch(context.Background(), req.RestaurantIDs, req.MaxWorkers); err != nil {
				s.logger.Error("background batch failed", map[string]interface{}{"error": err.Error()})
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{
			"success": true,
			"message": "Batch processing started in background",
		})
		return
	}

	summary, err := s.runner.ProcessBatch(c.Request.Context(), req.RestaurantIDs, req.MaxWorkers)
	if err != nil {
		s.logger.Error("batch run failed", map[string]interface{}{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":                    true,
		"total_restaurants":          summary.TotalRestaurants,
		"successful_restaurants":     summary.SuccessfulRestaurants,
		"total_menu_items_extracted": summary.TotalMenuItems,
		"elapsed_ms":                 summary.Elapsed.Milliseconds(),
		"details":                    summary.Results,
	})
}
