// internal/store/restaurants.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/lib/pq"

	apperrors "macromaps/internal/common/errors"
	"macromaps/internal/common/logger"
	"macromaps/internal/models"
)

// haversineExpr computes great-circle distance in km from ($1,$2) to the row
// coordinates. least() guards acos against rounding slightly above 1.
const haversineExpr = `6371 * acos(least(1.0,
	cos(radians($1)) * cos(radians(latitude)) * cos(radians(longitude) - radians($2))
	+ sin(radians($1)) * sin(radians(latitude))))`

const restaurantColumns = `id, place_id, name, address, category, phone, website, price_level,
	rating, reviews_count, latitude, longitude, opening_hours, image_urls,
	google_maps_url, status, coalesce(status_detail, ''), created_at, updated_at`

// RestaurantRepository persists scraped places and their processing status.
type RestaurantRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRestaurantRepository(db *sql.DB, log logger.Logger) *RestaurantRepository {
	return &RestaurantRepository{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "store.restaurants"}),
	}
}

// Upsert inserts scraped places, updating scraped fields on conflict while
// preserving the existing row id and processing status.
func (r *RestaurantRepository) Upsert(ctx context.Context, restaurants []models.Restaurant) (int, error) {
	saved := 0
	for _, rest := range restaurants {
		hours, err := json.Marshal(rest.OpeningHours)
		if err != nil {
			return saved, apperrors.NewDatastoreWriteFailedError(err)
		}

		_, err = r.db.ExecContext(ctx, `
			INSERT INTO restaurants (
				id, place_id, name, address, category, phone, website, price_level,
				rating, reviews_count, latitude, longitude, opening_hours, image_urls,
				google_maps_url, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now(), now())
			ON CONFLICT (place_id) DO UPDATE SET
				name = EXCLUDED.name,
				address = EXCLUDED.address,
				category = EXCLUDED.category,
				phone = EXCLUDED.phone,
				website = EXCLUDED.website,
				price_level = EXCLUDED.price_level,
				rating = EXCLUDED.rating,
				reviews_count = EXCLUDED.reviews_count,
				latitude = EXCLUDED.latitude,
				longitude = EXCLUDED.longitude,
				opening_hours = EXCLUDED.opening_hours,
				image_urls = EXCLUDED.image_urls,
				google_maps_url = EXCLUDED.google_maps_url,
				updated_at = now()`,
			rest.ID, rest.PlaceID, rest.Name, rest.Address, rest.Category, rest.Phone,
			rest.Website, rest.PriceLevel, rest.Rating, rest.ReviewsCount,
			rest.Latitude, rest.Longitude, hours, pq.Array(rest.ImageURLs),
			rest.GoogleMapsURL, string(rest.Status),
		)
		if err != nil {
			r.logger.Error("upsert failed", map[string]interface{}{
				"placeId": rest.PlaceID,
				"error":   err.Error(),
			})
			return saved, apperrors.NewDatastoreWriteFailedError(err)
		}
		saved++
	}
	return saved, nil
}

// GetByID looks a restaurant up by row UUID first, then by place id.
func (r *RestaurantRepository) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	if looksLikeUUID(id) {
		rest, err := r.getOne(ctx, "id", id)
		if err == nil {
			return rest, nil
		}
		if !apperrors.HasCode(err, apperrors.ErrCodeRestaurantNotFound) {
			return nil, err
		}
	}
	return r.getOne(ctx, "place_id", id)
}

func (r *RestaurantRepository) getOne(ctx context.Context, column, value string) (*models.Restaurant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE `+column+` = $1`, value)

	rest, err := scanRestaurant(row.Scan, false)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewRestaurantNotFoundError(value)
	}
	if err != nil {
		return nil, apperrors.NewDatastoreQueryFailedError(err)
	}
	return rest, nil
}

// WithinRadius returns restaurants inside radiusKm of the point, closest
// first, each annotated with its distance. When onlyFinished is set only
// fully processed restaurants are returned.
func (r *RestaurantRepository) WithinRadius(ctx context.Context, latitude, longitude, radiusKm float64, onlyFinished bool) ([]models.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + `, ` + haversineExpr + ` AS distance_km
		FROM restaurants
		WHERE ` + haversineExpr + ` <= $3`
	if onlyFinished {
		query += ` AND status = 'finished'`
	}
	query += ` ORDER BY distance_km ASC`

	rows, err := r.db.QueryContext(ctx, query, latitude, longitude, radiusKm)
	if err != nil {
		return nil, apperrors.NewDatastoreQueryFailedError(err)
	}
	defer rows.Close()

	var restaurants []models.Restaurant
	for rows.Next() {
		rest, err := scanRestaurant(rows.Scan, true)
		if err != nil {
			return nil, apperrors.NewDatastoreQueryFailedError(err)
		}
		restaurants = append(restaurants, *rest)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatastoreQueryFailedError(err)
	}
	return restaurants, nil
}

// Images returns the candidate image URLs stored for a place.
func (r *RestaurantRepository) Images(ctx context.Context, placeID string) ([]string, error) {
	var urls []string
	err := r.db.QueryRowContext(ctx,
		`SELECT image_urls FROM restaurants WHERE place_id = $1`, placeID,
	).Scan(pq.Array(&urls))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewRestaurantNotFoundError(placeID)
	}
	if err != nil {
		return nil, apperrors.NewDatastoreQueryFailedError(err)
	}
	return urls, nil
}

// PendingPlaceIDs lists restaurants awaiting processing.
func (r *RestaurantRepository) PendingPlaceIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT place_id FROM restaurants WHERE status = 'pending' ORDER BY created_at ASC`)
	if err != nil {
		return nil, apperrors.NewDatastoreQueryFailedError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewDatastoreQueryFailedError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatastoreQueryFailedError(err)
	}
	return ids, nil
}

// StatusMap reports the current status for each given place id. Missing
// places are simply absent from the map.
func (r *RestaurantRepository) StatusMap(ctx context.Context, placeIDs []string) (map[string]models.Status, error) {
	if len(placeIDs) == 0 {
		return map[string]models.Status{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT place_id, status FROM restaurants WHERE place_id = ANY($1)`, pq.Array(placeIDs))
	if err != nil {
		return nil, apperrors.NewDatastoreQueryFailedError(err)
	}
	defer rows.Close()

	statuses := make(map[string]models.Status)
	for rows.Next() {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			return nil, apperrors.NewDatastoreQueryFailedError(err)
		}
		statuses[id] = models.Status(status)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatastoreQueryFailedError(err)
	}
	return statuses, nil
}

// SetStatus moves a restaurant through the processing state machine. The
// detail column captures the raw error on `error` transitions.
func (r *RestaurantRepository) SetStatus(ctx context.Context, placeID string, status models.Status, detail string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE restaurants SET status = $1, status_detail = $2, updated_at = now() WHERE place_id = $3`,
		string(status), detail, placeID)
	if err != nil {
		return apperrors.NewDatastoreWriteFailedError(err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewRestaurantNotFoundError(placeID)
	}
	return nil
}

type scanFunc func(dest ...interface{}) error

func scanRestaurant(scan scanFunc, withDistance bool) (*models.Restaurant, error) {
	var rest models.Restaurant
	var hours []byte
	var urls []string
	var distance float64

	dest := []interface{}{
		&rest.ID, &rest.PlaceID, &rest.Name, &rest.Address, &rest.Category,
		&rest.Phone, &rest.Website, &rest.PriceLevel, &rest.Rating,
		&rest.ReviewsCount, &rest.Latitude, &rest.Longitude, &hours,
		pq.Array(&urls), &rest.GoogleMapsURL, (*string)(&rest.Status),
		&rest.StatusDetail, &rest.CreatedAt, &rest.UpdatedAt,
	}
	if withDistance {
		dest = append(dest, &distance)
	}

	if err := scan(dest...); err != nil {
		return nil, err
	}

	rest.ImageURLs = urls
	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &rest.OpeningHours); err != nil {
			return nil, err
		}
	}
	if withDistance {
		d := roundKm(distance)
		rest.DistanceKm = &d
	}
	return &rest, nil
}

func roundKm(km float64) float64 {
	return float64(int(km*100+0.5)) / 100
}

func looksLikeUUID(s string) bool {
	return len(s) == 36 && strings.Count(s, "-") == 4
}
