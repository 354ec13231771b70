// internal/pipeline/processor.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"macromaps/internal/common/config"
	"macromaps/internal/common/logger"
	"macromaps/internal/common/metrics"
	"macromaps/internal/models"
)

// RestaurantStore is the slice of the restaurant repository the pipeline
// needs.
type RestaurantStore interface {
	Images(ctx context.Context, placeID string) ([]string, error)
	PendingPlaceIDs(ctx context.Context) ([]string, error)
	StatusMap(ctx context.Context, placeIDs []string) (map[string]models.Status, error)
	SetStatus(ctx context.Context, placeID string, status models.Status, detail string) error
}

// MenuStore persists a restaurant's consolidated menu.
type MenuStore interface {
	ReplaceForRestaurant(ctx context.Context, placeID string, items []models.MenuItem) error
}

// MenuModel is the three-stage vision/text model interface.
type MenuModel interface {
	ClassifyMenuImage(ctx context.Context, imageURL string) (*models.ImageClassification, error)
	AnalyzeMenuImage(ctx context.Context, imageURL string) ([]models.MenuItem, error)
	AggregateMenuItems(ctx context.Context, placeID string, items []models.MenuItem) ([]models.MenuItem, error)
}

// Processor runs the menu pipeline for a single restaurant: classify the
// candidate images, extract items from confirmed menus, consolidate in one
// final call, then persist. Classification and analysis pools are bounded
// per restaurant, so total model concurrency is restaurants x stage workers.
type Processor struct {
	restaurants RestaurantStore
	menus       MenuStore
	model       MenuModel
	config      *config.PipelineConfig
	logger      logger.Logger
}

func NewProcessor(restaurants RestaurantStore, menus MenuStore, model MenuModel, cfg *config.PipelineConfig, log logger.Logger) *Processor {
	return &Processor{
		restaurants: restaurants,
		menus:       menus,
		model:       model,
		config:      cfg,
		logger:      log.With(map[string]interface{}{"component": "pipeline.processor"}),
	}
}

// ProcessRestaurant runs the full pipeline for one place id. The restaurant
// must already be in the processing state; this method moves it to finished
// or error as its last action, after any menu write. A restaurant with no
// images, or whose images all classify as non-menu, finishes successfully
// with an empty menu. Per-image model failures are soft: the image is
// skipped and the run continues. An aggregation failure is fatal: nothing
// is written and the restaurant lands in error.
func (p *Processor) ProcessRestaurant(ctx context.Context, placeID string) models.ProcessingResult {
	started := time.Now()
	result := models.ProcessingResult{PlaceID: placeID}

	p.logger.Info("processing restaurant", map[string]interface{}{"placeId": placeID})

	urls, err := p.restaurants.Images(ctx, placeID)
	if err != nil {
		return p.fail(ctx, result, started, fmt.Errorf("loading images: %w", err))
	}
	result.TotalImages = len(urls)

	if len(urls) == 0 {
		return p.finish(ctx, result, started, nil)
	}

	urls = prioritizeImages(urls, p.config.ImagePriority)

	menuURLs := p.classifyImages(ctx, placeID, urls)
	result.MenuImagesFound = len(menuURLs)

	if len(menuURLs) == 0 {
		return p.finish(ctx, result, started, nil)
	}

	rawItems := p.analyzeImages(ctx, placeID, menuURLs)

	if len(rawItems) == 0 {
		return p.finish(ctx, result, started, nil)
	}

	aggregateStart := time.Now()
	finalItems, err := p.model.AggregateMenuItems(ctx, placeID, rawItems)
	metrics.StageDuration.WithLabelValues("aggregation").Observe(time.Since(aggregateStart).Seconds())
	if err != nil {
		return p.fail(ctx, result, started, fmt.Errorf("aggregating menu: %w", err))
	}

	result.TotalMenuItems = len(finalItems)
	return p.finish(ctx, result, started, finalItems)
}

// classifyImages fans classification out over the bounded pool and returns
// the URLs confirmed as menus, preserving priority order. Failed
// classifications count as non-menu.
func (p *Processor) classifyImages(ctx context.Context, placeID string, urls []string) []string {
	stageStart := time.Now()
	outcomes := mapConcurrent(ctx, p.config.ClassificationWorkers, urls,
		func(ctx context.Context, url string) (*models.ImageClassification, error) {
			return p.model.ClassifyMenuImage(ctx, url)
		})
	metrics.StageDuration.WithLabelValues("classification").Observe(time.Since(stageStart).Seconds())

	var menuURLs []string
	for i, oc := range outcomes {
		if oc.err != nil {
			metrics.ImagesClassified.WithLabelValues("error").Inc()
			p.logger.Warn("classification failed, skipping image", map[string]interface{}{
				"placeId":  placeID,
				"imageUrl": urls[i],
				"error":    oc.err.Error(),
			})
			continue
		}
		if oc.value.IsMenu {
			metrics.ImagesClassified.WithLabelValues("menu").Inc()
			menuURLs = append(menuURLs, urls[i])
		} else {
			metrics.ImagesClassified.WithLabelValues("not_menu").Inc()
		}
	}
	return menuURLs
}

// analyzeImages extracts raw items from each confirmed menu image. Items
// are concatenated in image order. Failed extractions are skipped.
func (p *Processor) analyzeImages(ctx context.Context, placeID string, urls []string) []models.MenuItem {
	stageStart := time.Now()
	outcomes := mapConcurrent(ctx, p.config.AnalysisWorkers, urls,
		func(ctx context.Context, url string) ([]models.MenuItem, error) {
			return p.model.AnalyzeMenuImage(ctx, url)
		})
	metrics.StageDuration.WithLabelValues("analysis").Observe(time.Since(stageStart).Seconds())

	var items []models.MenuItem
	for i, oc := range outcomes {
		if oc.err != nil {
			p.logger.Warn("analysis failed, skipping image", map[string]interface{}{
				"placeId":  placeID,
				"imageUrl": urls[i],
				"error":    oc.err.Error(),
			})
			continue
		}
		items = append(items, oc.value...)
	}
	return items
}

// finish writes the consolidated menu (nil clears it) and moves the
// restaurant to finished. The status transition is last so a finished
// restaurant always has its menu visible.
func (p *Processor) finish(ctx context.Context, result models.ProcessingResult, started time.Time, items []models.MenuItem) models.ProcessingResult {
	if err := p.menus.ReplaceForRestaurant(ctx, result.PlaceID, items); err != nil {
		return p.fail(ctx, result, started, fmt.Errorf("persisting menu: %w", err))
	}
	if err := p.restaurants.SetStatus(ctx, result.PlaceID, models.StatusFinished, ""); err != nil {
		return p.fail(ctx, result, started, fmt.Errorf("marking finished: %w", err))
	}

	result.ProcessingTime = time.Since(started)
	metrics.RestaurantsProcessed.WithLabelValues("finished").Inc()

	p.logger.Info("restaurant processed", map[string]interface{}{
		"placeId":    result.PlaceID,
		"images":     result.TotalImages,
		"menuImages": result.MenuImagesFound,
		"menuItems":  result.TotalMenuItems,
		"durationMs": result.ProcessingTime.Milliseconds(),
	})
	return result
}

func (p *Processor) fail(ctx context.Context, result models.ProcessingResult, started time.Time, cause error) models.ProcessingResult {
	result.Error = cause.Error()
	result.ProcessingTime = time.Since(started)
	metrics.RestaurantsProcessed.WithLabelValues("error").Inc()

	p.logger.Error("restaurant processing failed", map[string]interface{}{
		"placeId": result.PlaceID,
		"error":   result.Error,
	})

	if err := p.restaurants.SetStatus(ctx, result.PlaceID, models.StatusError, result.Error); err != nil {
		p.logger.Error("could not record error status", map[string]interface{}{
			"placeId": result.PlaceID,
			"error":   err.Error(),
		})
	}
	return result
}
