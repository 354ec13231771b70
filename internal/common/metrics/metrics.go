// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RestaurantsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_restaurants_processed_total",
			Help: "Total number of restaurants processed by the menu pipeline",
		},
		[]string{"status"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of pipeline stages in seconds",
		},
		[]string{"stage"},
	)

	ImagesClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_images_classified_total",
			Help: "Total number of images classified, by verdict",
		},
		[]string{"verdict"},
	)

	MenuItemsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_menu_items_persisted_total",
			Help: "Total number of consolidated menu items written",
		},
	)

	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_calls_total",
			Help: "Total number of model calls, by tier and outcome",
		},
		[]string{"tier", "outcome"},
	)

	ScrapeRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_runs_total",
			Help: "Total number of places-scraper runs, by outcome",
		},
		[]string{"outcome"},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests, by route and status",
		},
		[]string{"route", "status"},
	)
)
