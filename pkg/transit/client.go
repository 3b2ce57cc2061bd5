// Package transit searches multi-leg ground transit routes (rail and bus)
// between two coordinate pairs.
package transit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/EcoRoute/eco-route-backend/types"
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ types.TransitSearcher = (*Client)(nil)

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Search returns the provider's best multi-leg route, or nil when the
// provider knows no connection between the two points.
func (c *Client) Search(ctx context.Context, origin, destination types.Coordinates, date string) (*types.TransitRoute, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("transit API key not configured")
	}

	params := url.Values{}
	params.Add("from", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Add("to", fmt.Sprintf("%f,%f", destination.Lat, destination.Lng))
	params.Add("date", date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v2/directions/transit?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create transit request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No route between the points is an empty result, not a failure.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transit API returned status: %d", resp.StatusCode)
	}

	var routeResp struct {
		Routes []struct {
			DurationMinutes int     `json:"durationMinutes"`
			DistanceKm      float64 `json:"distanceKm"`
			Polyline        string  `json:"polyline"`
			Legs            []struct {
				Mode            string  `json:"mode"`
				Line            string  `json:"line"`
				From            string  `json:"from"`
				To              string  `json:"to"`
				DurationMinutes int     `json:"durationMinutes"`
				DistanceKm      float64 `json:"distanceKm"`
			} `json:"legs"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&routeResp); err != nil {
		return nil, fmt.Errorf("failed to decode transit response: %w", err)
	}

	if len(routeResp.Routes) == 0 {
		return nil, nil
	}

	best := routeResp.Routes[0]
	route := &types.TransitRoute{
		TotalDurationMinutes: best.DurationMinutes,
		TotalDistanceKm:      best.DistanceKm,
		Legs:                 make([]types.RouteLeg, 0, len(best.Legs)),
	}
	if best.Polyline != "" {
		polyline := best.Polyline
		route.Polyline = &polyline
	}
	for _, leg := range best.Legs {
		routeLeg := types.RouteLeg{
			VehicleClass:    leg.Mode,
			From:            leg.From,
			To:              leg.To,
			DurationMinutes: leg.DurationMinutes,
			DistanceKm:      leg.DistanceKm,
		}
		if leg.Line != "" {
			line := leg.Line
			routeLeg.Line = &line
		}
		route.Legs = append(route.Legs, routeLeg)
	}

	logger.GetLogger().Debugw("Transit search completed",
		"legs", len(route.Legs),
		"distanceKm", route.TotalDistanceKm)

	return route, nil
}
