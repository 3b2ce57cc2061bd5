// Package flights searches flight itineraries through an OAuth2-protected
// flight offers API.
package flights

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

// Client is the flight search adapter. It never panics past its boundary;
// every failure surfaces as an error for the coordinator to absorb.
type Client struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
	tokens       *TokenCache
}

var _ types.FlightSearcher = (*Client)(nil)

// NewClient creates a flight client. Empty credentials produce a client
// whose searches fail fast; the coordinator degrades that to no flight
// options.
func NewClient(clientID, clientSecret, baseURL string) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
	c.tokens = NewTokenCache(c.fetchToken)
	return c
}

// fetchToken performs the client-credentials exchange.
func (c *Client) fetchToken(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("token endpoint returned status: %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", 0, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", 0, fmt.Errorf("token endpoint returned empty token")
	}

	logger.GetLogger().Debugw("Fetched flight provider token",
		"token", logger.MaskSensitiveString(tokenResp.AccessToken, 3, 3),
		"expiresIn", tokenResp.ExpiresIn)

	return tokenResp.AccessToken, time.Duration(tokenResp.ExpiresIn) * time.Second, nil
}

// Search returns raw flight itineraries between two named places on a date.
func (c *Client) Search(ctx context.Context, origin, destination, date string) ([]types.FlightItinerary, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, fmt.Errorf("flight provider credentials not configured")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain flight provider token: %w", err)
	}

	params := url.Values{}
	params.Add("origin", origin)
	params.Add("destination", destination)
	params.Add("departureDate", date)
	params.Add("max", "20")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v2/shopping/flight-offers?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create flight search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flight search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flight API returned status: %d", resp.StatusCode)
	}

	var offersResp struct {
		Data []struct {
			ID              string   `json:"id"`
			Carrier         string   `json:"carrier"`
			FlightNumber    string   `json:"flightNumber"`
			Stops           int      `json:"stops"`
			DurationMinutes int      `json:"durationMinutes"`
			Price           *float64 `json:"price"`
			BookingURL      string   `json:"bookingUrl"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&offersResp); err != nil {
		return nil, fmt.Errorf("failed to decode flight offers: %w", err)
	}

	itineraries := make([]types.FlightItinerary, 0, len(offersResp.Data))
	for _, offer := range offersResp.Data {
		itin := types.FlightItinerary{
			ID:              offer.ID,
			Stops:           offer.Stops,
			DurationMinutes: offer.DurationMinutes,
			Price:           offer.Price,
		}
		if offer.Carrier != "" {
			carrier := offer.Carrier
			itin.Provider = &carrier
		}
		if offer.FlightNumber != "" {
			number := offer.FlightNumber
			itin.FlightNumber = &number
		}
		if offer.BookingURL != "" {
			booking := offer.BookingURL
			itin.BookingURL = &booking
		}
		itineraries = append(itineraries, itin)
	}

	logger.GetLogger().Debugw("Flight search completed",
		"origin", origin,
		"destination", destination,
		"results", len(itineraries))

	return itineraries, nil
}
