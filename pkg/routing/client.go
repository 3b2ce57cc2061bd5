// Package routing computes point-to-point driving routes through an
// OSRM-compatible routing service.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/EcoRoute/eco-route-backend/types"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ types.DrivingRouter = (*Client)(nil)

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Route returns the fastest driving route between two points, or nil when no
// road connection exists.
func (c *Client) Route(ctx context.Context, origin, destination types.Coordinates) (*types.DrivingRoute, error) {
	// OSRM takes lng,lat pairs in the path.
	endpoint := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=polyline",
		c.baseURL, origin.Lng, origin.Lat, destination.Lng, destination.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create routing request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("routing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing API returned status: %d", resp.StatusCode)
	}

	var routeResp struct {
		Code   string `json:"code"`
		Routes []struct {
			Distance float64 `json:"distance"` // meters
			Duration float64 `json:"duration"` // seconds
			Geometry string  `json:"geometry"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&routeResp); err != nil {
		return nil, fmt.Errorf("failed to decode routing response: %w", err)
	}

	if routeResp.Code != "Ok" || len(routeResp.Routes) == 0 {
		return nil, nil
	}

	best := routeResp.Routes[0]
	route := &types.DrivingRoute{
		DistanceKm:      best.Distance / 1000.0,
		DurationMinutes: int(math.Round(best.Duration / 60.0)),
	}
	if best.Geometry != "" {
		polyline := best.Geometry
		route.Polyline = &polyline
	}

	logger.GetLogger().Debugw("Driving route computed",
		"distanceKm", route.DistanceKm,
		"durationMinutes", route.DurationMinutes)

	return route, nil
}
