// internal/pipeline/driver.go
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"macromaps/internal/common/config"
	"macromaps/internal/common/logger"
	"macromaps/internal/common/observability"
	"macromaps/internal/models"
)

// Driver fans the per-restaurant pipeline out over the outer bounded pool.
// One restaurant's failure never touches its siblings: each entry in the
// batch runs in isolation and reports its own result.
type Driver struct {
	processor   *Processor
	restaurants RestaurantStore
	config      *config.PipelineConfig
	obs         *observability.Observability
	logger      logger.Logger
}

func NewDriver(processor *Processor, restaurants RestaurantStore, cfg *config.PipelineConfig, obs *observability.Observability, log logger.Logger) *Driver {
	return &Driver{
		processor:   processor,
		restaurants: restaurants,
		config:      cfg,
		obs:         obs,
		logger:      log.With(map[string]interface{}{"component": "pipeline.driver"}),
	}
}

// ProcessBatch runs the pipeline for the given place ids, or for every
// pending restaurant when placeIDs is nil. maxWorkers overrides the
// configured outer pool size when positive. The result map is keyed by
// place id and assembled only at the join point, after every worker has
// returned.
func (d *Driver) ProcessBatch(ctx context.Context, placeIDs []string, maxWorkers int) (models.BatchSummary, error) {
	started := time.Now()

	if placeIDs == nil {
		pending, err := d.restaurants.PendingPlaceIDs(ctx)
		if err != nil {
			return models.BatchSummary{}, err
		}
		placeIDs = pending
	}

	if len(placeIDs) == 0 {
		d.logger.Info("no restaurants to process", nil)
		return models.Summarize(map[string]models.ProcessingResult{}, time.Since(started)), nil
	}

	known, err := d.restaurants.StatusMap(ctx, placeIDs)
	if err != nil {
		return models.BatchSummary{}, err
	}

	results := make(map[string]models.ProcessingResult, len(placeIDs))
	var runnable []string
	for _, id := range placeIDs {
		if _, ok := known[id]; !ok {
			results[id] = models.ProcessingResult{
				PlaceID: id,
				Error:   fmt.Sprintf("restaurant %s not found", id),
			}
			continue
		}
		runnable = append(runnable, id)
	}

	// Mark the whole batch processing up front so readers see every member
	// in flight before any model call is made. A restaurant whose mark
	// fails is reported in the summary and skipped; its siblings still run.
	marked := runnable[:0]
	for _, id := range runnable {
		if err := d.restaurants.SetStatus(ctx, id, models.StatusProcessing, ""); err != nil {
			d.logger.Error("could not mark restaurant processing", map[string]interface{}{
				"placeId": id,
				"error":   err.Error(),
			})
			results[id] = models.ProcessingResult{
				PlaceID: id,
				Error:   fmt.Sprintf("marking processing: %v", err),
			}
			continue
		}
		marked = append(marked, id)
	}
	runnable = marked

	workers := d.config.RestaurantWorkers
	if maxWorkers > 0 {
		workers = maxWorkers
	}

	d.logger.Info("starting batch", map[string]interface{}{
		"restaurants": len(runnable),
		"workers":     workers,
	})

	var mu sync.Mutex
	outcomes := mapConcurrent(ctx, workers, runnable,
		func(ctx context.Context, placeID string) (models.ProcessingResult, error) {
			result := d.processor.ProcessRestaurant(ctx, placeID)
			mu.Lock()
			d.recordRestaurant(ctx, result)
			mu.Unlock()
			return result, nil
		})

	for _, oc := range outcomes {
		results[oc.value.PlaceID] = oc.value
	}

	summary := models.Summarize(results, time.Since(started))

	if d.obs != nil {
		d.obs.RecordBatchDuration(ctx, float64(summary.Elapsed.Milliseconds()), summary.TotalRestaurants)
	}

	d.logger.Info("batch finished", map[string]interface{}{
		"restaurants": summary.TotalRestaurants,
		"successful":  summary.SuccessfulRestaurants,
		"menuItems":   summary.TotalMenuItems,
		"durationMs":  summary.Elapsed.Milliseconds(),
	})

	return summary, nil
}

func (d *Driver) recordRestaurant(ctx context.Context, result models.ProcessingResult) {
	if d.obs == nil {
		return
	}
	status := "finished"
	if result.Failed() {
		status = "error"
	}
	d.obs.RecordRestaurantProcessed(ctx, status)
}
