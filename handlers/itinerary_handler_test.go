package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/EcoRoute/eco-route-backend/errors"
	"github.com/EcoRoute/eco-route-backend/middleware"
	"github.com/EcoRoute/eco-route-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGenerator implements types.ItineraryGenerator for handler tests.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateItinerary(ctx context.Context, req types.ItineraryRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) AnswerQuestion(ctx context.Context, question, tripContext string) (string, error) {
	args := m.Called(ctx, question, tripContext)
	return args.String(0), args.Error(1)
}

func setupItineraryRouter(generator types.ItineraryGenerator) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	h := NewItineraryHandler(generator)
	r.POST("/v1/plans/itinerary", h.GenerateItinerary)
	r.POST("/v1/plans/question", h.AnswerQuestion)
	return r
}

func sampleItineraryRequest() types.ItineraryRequest {
	return types.ItineraryRequest{
		Destination:   "Los Angeles",
		ItineraryType: "nature",
		DurationDays:  2,
		SelectedTransit: &types.TransitOption{
			Mode:     types.ModeTrain,
			Duration: "7h",
			CarbonKg: 24.6,
		},
	}
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateItinerary_EchoesSelections(t *testing.T) {
	generator := new(MockGenerator)
	generator.On("GenerateItinerary", mock.Anything, mock.Anything).
		Return("Day 1: arrive by train and walk Griffith Park.", nil)

	r := setupItineraryRouter(generator)
	w := postJSON(t, r, "/v1/plans/itinerary", sampleItineraryRequest())

	require.Equal(t, http.StatusOK, w.Code)

	var resp types.ItineraryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Itinerary, "Day 1")
	require.NotNil(t, resp.SelectedTransit)
	assert.Equal(t, types.ModeTrain, resp.SelectedTransit.Mode)
	generator.AssertExpectations(t)
}

func TestGenerateItinerary_SameSelectionsSameCall(t *testing.T) {
	// The server is stateless between phases: replaying the request just
	// invokes the generator again with identical input.
	generator := new(MockGenerator)
	generator.On("GenerateItinerary", mock.Anything, mock.Anything).
		Return("A narrative plan.", nil).Twice()

	r := setupItineraryRouter(generator)
	first := postJSON(t, r, "/v1/plans/itinerary", sampleItineraryRequest())
	second := postJSON(t, r, "/v1/plans/itinerary", sampleItineraryRequest())

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	generator.AssertExpectations(t)
}

func TestGenerateItinerary_MissingSelectionRejected(t *testing.T) {
	generator := new(MockGenerator)
	r := setupItineraryRouter(generator)

	req := sampleItineraryRequest()
	req.SelectedTransit = nil
	w := postJSON(t, r, "/v1/plans/itinerary", req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	generator.AssertNotCalled(t, "GenerateItinerary")
}

func TestGenerateItinerary_GeneratorFailureMapped(t *testing.T) {
	generator := new(MockGenerator)
	generator.On("GenerateItinerary", mock.Anything, mock.Anything).
		Return("", apperrors.GenerationFailed(assert.AnError))

	r := setupItineraryRouter(generator)
	w := postJSON(t, r, "/v1/plans/itinerary", sampleItineraryRequest())

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestAnswerQuestion_ReturnsAnswer(t *testing.T) {
	generator := new(MockGenerator)
	generator.On("AnswerQuestion", mock.Anything, "Is the train scenic?", "coastal route").
		Return("Yes, the Coast Starlight hugs the shoreline for hours.", nil)

	r := setupItineraryRouter(generator)
	w := postJSON(t, r, "/v1/plans/question", types.QuestionRequest{
		Question: "Is the train scenic?",
		Context:  "coastal route",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["answer"], "Coast Starlight")
}

func TestAnswerQuestion_EmptyQuestionRejected(t *testing.T) {
	generator := new(MockGenerator)
	r := setupItineraryRouter(generator)

	w := postJSON(t, r, "/v1/plans/question", types.QuestionRequest{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	generator.AssertNotCalled(t, "AnswerQuestion")
}
