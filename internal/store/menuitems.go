// internal/store/menuitems.go
package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	apperrors "macromaps/internal/common/errors"
	"macromaps/internal/common/logger"
	"macromaps/internal/common/metrics"
	"macromaps/internal/models"
)

// MenuItemRepository persists consolidated menu items.
type MenuItemRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewMenuItemRepository(db *sql.DB, log logger.Logger) *MenuItemRepository {
	return &MenuItemRepository{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "store.menuitems"}),
	}
}

// ReplaceForRestaurant swaps a restaurant's menu atomically: prior rows go,
// the consolidated list comes in. Rolls back on any failure so no partial
// menu is ever visible.
func (r *MenuItemRepository) ReplaceForRestaurant(ctx context.Context, placeID string, items []models.MenuItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewDatastoreWriteFailedError(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM menu_items WHERE place_id = $1`, placeID); err != nil {
		return apperrors.NewDatastoreWriteFailedError(err)
	}

	for _, item := range items {
		id := item.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO menu_items (
				id, place_id, name, description, price, category,
				calories, protein, carbs, fat, fiber, sugar, sodium,
				source_image_url, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())`,
			id, placeID, item.Name, item.Description, item.Price, item.Category,
			item.Calories, item.Protein, item.Carbs, item.Fat,
			item.Fiber, item.Sugar, item.Sodium, item.SourceImageURL,
		)
		if err != nil {
			return apperrors.NewDatastoreWriteFailedError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewDatastoreWriteFailedError(err)
	}

	metrics.MenuItemsPersisted.Add(float64(len(items)))
	r.logger.Info("menu replaced", map[string]interface{}{
		"placeId": placeID,
		"items":   len(items),
	})
	return nil
}

// ListByPlaceIDs returns menu items grouped by place id.
func (r *MenuItemRepository) ListByPlaceIDs(ctx context.Context, placeIDs []string) (map[string][]models.MenuItem, error) {
	grouped := make(map[string][]models.MenuItem)
	if len(placeIDs) == 0 {
		return grouped, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, place_id, name, coalesce(description, ''), price, coalesce(category, ''),
			calories, protein, carbs, fat, fiber, sugar, sodium,
			coalesce(source_image_url, ''), created_at
		FROM menu_items
		WHERE place_id = ANY($1)
		ORDER BY place_id, category, name`, pq.Array(placeIDs))
	if err != nil {
		return nil, apperrors.NewDatastoreQueryFailedError(err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, apperrors.NewDatastoreQueryFailedError(err)
		}
		grouped[item.PlaceID] = append(grouped[item.PlaceID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatastoreQueryFailedError(err)
	}
	return grouped, nil
}

// WithinRadius returns menu items of finished restaurants inside radiusKm,
// each joined with its restaurant name and distance from the search center.
func (r *MenuItemRepository) WithinRadius(ctx context.Context, latitude, longitude, radiusKm float64) ([]models.MenuItemWithRestaurant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.place_id, m.name, coalesce(m.description, ''), m.price, coalesce(m.category, ''),
			m.calories, m.protein, m.carbs, m.fat, m.fiber, m.sugar, m.sodium,
			coalesce(m.source_image_url, ''), m.created_at,
			r.name, `+haversineExpr+` AS distance_km
		FROM menu_items m
		JOIN restaurants r ON r.place_id = m.place_id
		WHERE r.status = 'finished' AND `+haversineExpr+` <= $3
		ORDER BY distance_km ASC, m.name ASC`, latitude, longitude, radiusKm)
	if err != nil {
		return nil, apperrors.NewDatastoreQueryFailedError(err)
	}
	defer rows.Close()

	var items []models.MenuItemWithRestaurant
	for rows.Next() {
		var item models.MenuItemWithRestaurant
		var distance float64
		err := rows.Scan(
			&item.ID, &item.PlaceID, &item.Name, &item.Description, &item.Price,
			&item.Category, &item.Calories, &item.Protein, &item.Carbs, &item.Fat,
			&item.Fiber, &item.Sugar, &item.Sodium,
			&item.SourceImageURL, &item.CreatedAt, &item.RestaurantName, &distance,
		)
		if err != nil {
			return nil, apperrors.NewDatastoreQueryFailedError(err)
		}
		item.RestaurantDistanceKm = roundKm(distance)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatastoreQueryFailedError(err)
	}
	return items, nil
}

func scanMenuItem(rows *sql.Rows) (models.MenuItem, error) {
	var item models.MenuItem
	err := rows.Scan(
		&item.ID, &item.PlaceID, &item.Name, &item.Description, &item.Price,
		&item.Category, &item.Calories, &item.Protein, &item.Carbs, &item.Fat,
		&item.Fiber, &item.Sugar, &item.Sodium,
		&item.SourceImageURL, &item.CreatedAt,
	)
	return item, err
}
