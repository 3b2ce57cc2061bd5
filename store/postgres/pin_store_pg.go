// Package postgres contains the PostgreSQL implementations of the store
// interfaces.
package postgres

import (
	"context"
	"fmt"

	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/EcoRoute/eco-route-backend/store"
	"github.com/EcoRoute/eco-route-backend/types"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure pgPinStore implements store.PinStore.
var _ store.PinStore = (*pgPinStore)(nil)

type pgPinStore struct {
	pool *pgxpool.Pool
}

// NewPgPinStore creates a new PostgreSQL pin store.
func NewPgPinStore(pool *pgxpool.Pool) store.PinStore {
	return &pgPinStore{pool: pool}
}

// ListInBounds implements store.PinStore with a bounding-box query over the
// local_pins table.
func (s *pgPinStore) ListInBounds(ctx context.Context, minLat, minLng, maxLat, maxLng float64, limit int) ([]types.LocalPin, error) {
	log := logger.GetLogger()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx, `
        SELECT id, title, description, latitude, longitude
        FROM local_pins
        WHERE latitude BETWEEN $1 AND $2
          AND longitude BETWEEN $3 AND $4
        ORDER BY created_at DESC
        LIMIT $5`,
		minLat, maxLat, minLng, maxLng, limit,
	)
	if err != nil {
		log.Errorw("Failed to query local pins", "error", err)
		return nil, fmt.Errorf("failed to query local pins: %w", err)
	}
	defer rows.Close()

	pins := make([]types.LocalPin, 0, limit)
	for rows.Next() {
		var pin types.LocalPin
		if err := rows.Scan(&pin.ID, &pin.Title, &pin.Description, &pin.Latitude, &pin.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan local pin: %w", err)
		}
		pins = append(pins, pin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pin row iteration failed: %w", err)
	}

	log.Debugw("Local pin lookup completed", "results", len(pins))
	return pins, nil
}
