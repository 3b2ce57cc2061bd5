// Package geocode resolves place names to coordinates using Open-Meteo's
// geocoding API, with Nominatim as a fallback.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/EcoRoute/eco-route-backend/types"
)

const (
	primaryBaseURL   = "https://geocoding-api.open-meteo.com/v1/search"
	nominatimBaseURL = "https://nominatim.openstreetmap.org/search"
)

// Resolver implements types.Geocoder over two free geocoding services.
type Resolver struct {
	client *http.Client
}

var _ types.Geocoder = (*Resolver)(nil)

func NewResolver() *Resolver {
	return &Resolver{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Geocode fetches the latitude and longitude for a given city/place name.
// The primary service is tried first; Nominatim is the fallback.
func (r *Resolver) Geocode(ctx context.Context, place string) (types.Coordinates, error) {
	log := logger.GetLogger()

	coords, err := r.primaryCoordinates(ctx, place)
	if err == nil {
		return coords, nil
	}

	log.Warnw("Primary geocoding failed, falling back to Nominatim",
		"place", place,
		"error", err)

	coords, err = r.nominatimCoordinates(ctx, place)
	if err == nil {
		return coords, nil
	}

	log.Errorw("Both geocoding services failed",
		"place", place,
		"error", err)

	return types.Coordinates{}, fmt.Errorf("no location found for: %s", place)
}

func (r *Resolver) primaryCoordinates(ctx context.Context, place string) (types.Coordinates, error) {
	params := url.Values{}
	params.Add("name", place)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", primaryBaseURL, params.Encode()), nil)
	if err != nil {
		return types.Coordinates{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return types.Coordinates{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Coordinates{}, fmt.Errorf("geocoding API error: %s", resp.Status)
	}

	var geoResp struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&geoResp); err != nil {
		return types.Coordinates{}, err
	}

	if len(geoResp.Results) == 0 {
		return types.Coordinates{}, fmt.Errorf("no location found for: %s", place)
	}

	return types.Coordinates{
		Lat: geoResp.Results[0].Latitude,
		Lng: geoResp.Results[0].Longitude,
	}, nil
}

func (r *Resolver) nominatimCoordinates(ctx context.Context, place string) (types.Coordinates, error) {
	params := url.Values{}
	params.Add("q", place)
	params.Add("format", "json")
	params.Add("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", nominatimBaseURL, params.Encode()), nil)
	if err != nil {
		return types.Coordinates{}, err
	}

	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", "EcoRoutePlanner/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return types.Coordinates{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Coordinates{}, fmt.Errorf("nominatim api error: %s", resp.Status)
	}

	var nominatimResp []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&nominatimResp); err != nil {
		return types.Coordinates{}, err
	}

	if len(nominatimResp) == 0 {
		return types.Coordinates{}, fmt.Errorf("no location found for: %s", place)
	}

	lat, err := strconv.ParseFloat(nominatimResp[0].Lat, 64)
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("invalid latitude: %s", nominatimResp[0].Lat)
	}

	lng, err := strconv.ParseFloat(nominatimResp[0].Lon, 64)
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("invalid longitude: %s", nominatimResp[0].Lon)
	}

	return types.Coordinates{Lat: lat, Lng: lng}, nil
}
