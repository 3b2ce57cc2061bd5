// Package store defines the data-access interfaces the planner consumes.
// Persistence of pins is a collaborator concern; the pipeline only ever sees
// these interfaces.
package store

import (
	"context"

	"github.com/EcoRoute/eco-route-backend/types"
)

// PinStore reads community points of interest from the keyed record store.
type PinStore interface {
	// ListInBounds returns up to limit pins inside the bounding box.
	ListInBounds(ctx context.Context, minLat, minLng, maxLat, maxLng float64, limit int) ([]types.LocalPin, error)
}

// NoopPinStore is used when no database is configured; every lookup returns
// an empty list.
type NoopPinStore struct{}

var _ PinStore = (*NoopPinStore)(nil)

func (NoopPinStore) ListInBounds(ctx context.Context, minLat, minLng, maxLat, maxLng float64, limit int) ([]types.LocalPin, error) {
	return []types.LocalPin{}, nil
}
