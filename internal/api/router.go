// internal/api/router.go
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"macromaps/internal/common/config"
	"macromaps/internal/common/logger"
	"macromaps/internal/common/metrics"
	"macromaps/internal/models"
)

// RestaurantStore is the slice of the restaurant repository the handlers
// use.
type RestaurantStore interface {
	WithinRadius(ctx context.Context, latitude, longitude, radiusKm float64, onlyFinished bool) ([]models.Restaurant, error)
	GetByID(ctx context.Context, id string) (*models.Restaurant, error)
	Upsert(ctx context.Context, restaurants []models.Restaurant) (int, error)
	StatusMap(ctx context.Context, placeIDs []string) (map[string]models.Status, error)
}

// MenuStore is the read side of the menu repository.
type MenuStore interface {
	ListByPlaceIDs(ctx context.Context, placeIDs []string) (map[string][]models.MenuItem, error)
	WithinRadius(ctx context.Context, latitude, longitude, radiusKm float64) ([]models.MenuItemWithRestaurant, error)
}

// PlaceExtractor runs the scraping actor for a coordinate pair.
type PlaceExtractor interface {
	ExtractNearby(ctx context.Context, latitude, longitude float64) ([]models.Restaurant, error)
}

// BatchRunner runs the menu pipeline over a batch of restaurants.
type BatchRunner interface {
	ProcessBatch(ctx context.Context, placeIDs []string, maxWorkers int) (models.BatchSummary, error)
}

// ResponseCache is the short-TTL scan-response cache.
type ResponseCache interface {
	Get(ctx context.Context, latitude, longitude, radiusKm float64) ([]byte, bool)
	Set(ctx context.Context, latitude, longitude, radiusKm float64, body []byte)
	Invalidate(ctx context.Context, latitude, longitude, radiusKm float64)
}

// Server wires the HTTP surface to the stores, the extractor and the
// pipeline driver.
type Server struct {
	config      *config.Config
	restaurants RestaurantStore
	menus       MenuStore
	extractor   PlaceExtractor
	runner      BatchRunner
	cache       ResponseCache
	logger      logger.Logger
}

func NewServer(cfg *config.Config, restaurants RestaurantStore, menus MenuStore, extractor PlaceExtractor, runner BatchRunner, respCache ResponseCache, log logger.Logger) *Server {
	return &Server{
		config:      cfg,
		restaurants: restaurants,
		menus:       menus,
		extractor:   extractor,
		runner:      runner,
		cache:       respCache,
		logger:      log.With(map[string]interface{}{"component": "api"}),
	}
}

// Router builds the gin engine with CORS, request metrics and all routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestMetrics())

	corsConfig := cors.DefaultConfig()
	if len(s.config.Server.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = s.config.Server.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/scan-nearby", s.handleScanNearby)
	router.GET("/restaurants", s.handleListRestaurants)
	router.GET("/restaurants/:id", s.handleGetRestaurant)
	router.GET("/menu-items", s.handleListMenuItems)
	router.POST("/process-menus", s.handleProcessMenus)

	return router
}

func (s *Server) requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.APIRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()

		s.logger.Debug("request handled", map[string]interface{}{
			"route":      route,
			"status":     c.Writer.Status(),
			"durationMs": time.Since(start).Milliseconds(),
		})
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": s.config.App.Name,
		"version": s.config.App.Version,
	})
}
