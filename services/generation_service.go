package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/EcoRoute/eco-route-backend/errors"
	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/EcoRoute/eco-route-backend/types"
	"go.uber.org/zap"
)

// GenerationService talks to the external narrative-itinerary generator.
// The generator is an opaque collaborator: structured request in, itinerary
// text out. Its failures are fatal to phase two only; phase-one options
// remain valid.
type GenerationService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	enabled bool
	logger  *zap.SugaredLogger
}

var _ types.ItineraryGenerator = (*GenerationService)(nil)

func NewGenerationService(baseURL, apiKey string) *GenerationService {
	log := logger.GetLogger()

	if baseURL == "" {
		log.Info("Itinerary generator not configured, generation disabled")
		return &GenerationService{enabled: false, logger: log}
	}

	return &GenerationService{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		enabled: true,
		logger:  log,
	}
}

// IsEnabled returns whether generation is configured.
func (s *GenerationService) IsEnabled() bool {
	return s.enabled
}

// GenerateItinerary asks the generator for a narrative plan built from the
// caller's selections.
func (s *GenerationService) GenerateItinerary(ctx context.Context, req types.ItineraryRequest) (string, error) {
	if !s.enabled {
		return "", apperrors.GenerationFailed(fmt.Errorf("generator not configured"))
	}

	payload := map[string]interface{}{
		"destination":   req.Destination,
		"itineraryType": req.ItineraryType,
		"durationDays":  req.DurationDays,
		"summary":       SelectionSummary(&req),
		"pins":          req.LocalPins,
	}

	var genResp struct {
		Itinerary string `json:"itinerary"`
	}
	if err := s.post(ctx, "/v1/itinerary", payload, &genResp); err != nil {
		return "", apperrors.GenerationFailed(err)
	}
	if genResp.Itinerary == "" {
		return "", apperrors.GenerationFailed(fmt.Errorf("generator returned empty itinerary"))
	}

	return genResp.Itinerary, nil
}

// AnswerQuestion forwards a free-text question plus trip context to the
// generator and returns its plain-text answer.
func (s *GenerationService) AnswerQuestion(ctx context.Context, question, tripContext string) (string, error) {
	if !s.enabled {
		return "", apperrors.GenerationFailed(fmt.Errorf("generator not configured"))
	}

	payload := map[string]interface{}{
		"question": question,
		"context":  tripContext,
	}

	var answerResp struct {
		Answer string `json:"answer"`
	}
	if err := s.post(ctx, "/v1/answer", payload, &answerResp); err != nil {
		return "", apperrors.GenerationFailed(err)
	}

	return answerResp.Answer, nil
}

func (s *GenerationService) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal generator request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create generator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("generator request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("generator returned status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode generator response: %w", err)
	}
	return nil
}

// SelectionSummary renders the caller's transit and lodging selections as a
// single prompt-friendly line for the generator.
func SelectionSummary(req *types.ItineraryRequest) string {
	var b strings.Builder

	t := req.SelectedTransit
	fmt.Fprintf(&b, "Travel to %s by %s (%s, %.1f kg CO2e", req.Destination, t.Mode, t.Duration, t.CarbonKg)
	if t.Provider != nil {
		fmt.Fprintf(&b, ", %s", *t.Provider)
	}
	b.WriteString(")")

	if req.SelectedHotel != nil {
		fmt.Fprintf(&b, "; staying at %s", req.SelectedHotel.Name)
		if req.SelectedHotel.Address != "" {
			fmt.Fprintf(&b, " (%s)", req.SelectedHotel.Address)
		}
	}
	return b.String()
}
