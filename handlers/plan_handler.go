package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/EcoRoute/eco-route-backend/config"
	apperrors "github.com/EcoRoute/eco-route-backend/errors"
	"github.com/EcoRoute/eco-route-backend/logger"
	"github.com/EcoRoute/eco-route-backend/services"
	"github.com/EcoRoute/eco-route-backend/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PlanHandler exposes the phase-one planning pipeline over HTTP, both as a
// live SSE stream and as a plain synchronous call.
type PlanHandler struct {
	planner PlannerInterface
	cfg     config.PlannerConfig
	log     *zap.SugaredLogger
}

func NewPlanHandler(planner PlannerInterface, cfg config.PlannerConfig) *PlanHandler {
	return &PlanHandler{
		planner: planner,
		cfg:     cfg,
		log:     logger.GetLogger().Named("plan_handler"),
	}
}

// StreamPlan runs the planning pipeline and streams progress updates to the
// client as server-sent events. The terminal event is either "ready" with the
// full plan attached or "error"; a client that disconnects mid-stream simply
// stops receiving events while the pipeline runs to completion.
func (h *PlanHandler) StreamPlan(c *gin.Context) {
	var req types.TripPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	emitter := newSSEEmitter(c)
	paced := services.NewPacedEmitter(emitter,
		time.Duration(h.cfg.StageDelayMs)*time.Millisecond,
		time.Duration(h.cfg.StageJitterMs)*time.Millisecond)

	// The pipeline emits its own terminal error event, so a returned error
	// needs logging only. Headers are already sent; there is no status code
	// left to change.
	if _, err := h.planner.Plan(c.Request.Context(), req, paced); err != nil {
		h.log.Infow("Streamed plan ended with error",
			"destination", req.EndLocation,
			"error", err)
	}
}

// CreatePlan runs the same pipeline synchronously and returns the final plan
// as a single JSON document. Progress events are collected rather than
// streamed; the payload is identical to the data carried by the stream's
// terminal ready event.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req types.TripPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	collector := services.NewCollectingEmitter()
	result, err := h.planner.Plan(c.Request.Context(), req, collector)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// sseEmitter writes progress updates to the response as SSE events, flushing
// after each one. Once the client is gone every write becomes a no-op; the
// pipeline never sees a transport error.
type sseEmitter struct {
	c       *gin.Context
	flusher http.Flusher
	mu      sync.Mutex
	closed  bool
}

var _ services.ProgressEmitter = (*sseEmitter)(nil)

func newSSEEmitter(c *gin.Context) *sseEmitter {
	flusher, _ := c.Writer.(http.Flusher)
	return &sseEmitter{c: c, flusher: flusher}
}

func (e *sseEmitter) Emit(update types.ProgressUpdate) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	select {
	case <-e.c.Request.Context().Done():
		e.closed = true
		return nil
	default:
	}

	e.c.SSEvent(string(update.Stage), update)
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}
