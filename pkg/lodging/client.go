// Package lodging searches eco-rated hotels near a destination through a
// places-style API.
package lodging

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

var _ types.LodgingSearcher = (*Client)(nil)

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Search returns lodging results near the destination. The itinerary type
// biases the text query ("budget", "luxury", ...).
func (c *Client) Search(ctx context.Context, destination string, near types.Coordinates, itineraryType string) ([]types.EcoHotel, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("lodging API key not configured")
	}

	params := url.Values{}
	params.Add("query", fmt.Sprintf("eco friendly %s hotel in %s", itineraryType, destination))
	params.Add("location", fmt.Sprintf("%f,%f", near.Lat, near.Lng))
	params.Add("limit", "8")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/places:searchText?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create lodging request: %w", err)
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lodging request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lodging API returned status: %d", resp.StatusCode)
	}

	var placesResp struct {
		Places []struct {
			ID         string   `json:"id"`
			Name       string   `json:"displayName"`
			Address    string   `json:"formattedAddress"`
			Rating     *float64 `json:"rating"`
			PriceLevel *int     `json:"priceLevel"`
			Summary    string   `json:"editorialSummary"`
			WebsiteURL string   `json:"websiteUri"`
			MapsURL    string   `json:"googleMapsUri"`
			Location   *struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"location"`
		} `json:"places"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&placesResp); err != nil {
		return nil, fmt.Errorf("failed to decode lodging response: %w", err)
	}

	hotels := make([]types.EcoHotel, 0, len(placesResp.Places))
	for _, place := range placesResp.Places {
		hotel := types.EcoHotel{
			ID:         place.ID,
			Name:       place.Name,
			Address:    place.Address,
			Rating:     place.Rating,
			PriceLevel: place.PriceLevel,
		}
		if place.Summary != "" {
			summary := place.Summary
			hotel.Summary = &summary
		}
		if place.WebsiteURL != "" {
			website := place.WebsiteURL
			hotel.WebsiteURL = &website
		}
		if place.MapsURL != "" {
			maps := place.MapsURL
			hotel.MapsURL = &maps
		}
		if place.Location != nil {
			hotel.Location = &types.Coordinates{
				Lat: place.Location.Latitude,
				Lng: place.Location.Longitude,
			}
		}
		hotels = append(hotels, hotel)
	}

	logger.GetLogger().Debugw("Lodging search completed",
		"destination", destination,
		"results", len(hotels))

	return hotels, nil
}
