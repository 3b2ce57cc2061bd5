package services

import (
	"testing"
	"time"

	"github.com/EcoRoute/eco-route-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacedEmitter_DelaysOnlyOnStageTransitions(t *testing.T) {
	collector := NewCollectingEmitter()
	paced := NewPacedEmitter(collector, 2*time.Second, 0)

	var slept []time.Duration
	paced.sleep = func(d time.Duration) { slept = append(slept, d) }

	updates := []types.ProgressUpdate{
		{Stage: types.StageGeocoding, ProgressPercent: 5},
		{Stage: types.StageGeocoding, ProgressPercent: 10},
		{Stage: types.StageFlights, ProgressPercent: 15},
		{Stage: types.StageFlights, ProgressPercent: 25},
		{Stage: types.StageTransit, ProgressPercent: 30},
	}
	for _, u := range updates {
		require.NoError(t, paced.Emit(u))
	}

	// First stage starts immediately; each of the two transitions waits out
	// the remainder of the 2s minimum. Within-stage events never sleep.
	require.Len(t, slept, 2)
	for _, d := range slept {
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 2*time.Second)
	}

	assert.Len(t, collector.Updates(), len(updates))
}

func TestPacedEmitter_ErrorBypassesPacing(t *testing.T) {
	collector := NewCollectingEmitter()
	paced := NewPacedEmitter(collector, 2*time.Second, 0)

	sleeps := 0
	paced.sleep = func(time.Duration) { sleeps++ }

	require.NoError(t, paced.Emit(types.ProgressUpdate{Stage: types.StageGeocoding, ProgressPercent: 5}))
	require.NoError(t, paced.Emit(types.ProgressUpdate{Stage: types.StageError, Message: "boom", ProgressPercent: 5}))

	assert.Zero(t, sleeps, "a terminal error must go out immediately")
	updates := collector.Updates()
	require.Len(t, updates, 2)
	assert.Equal(t, types.StageError, updates[1].Stage)
}

func TestPacedEmitter_ZeroDelayNeverSleeps(t *testing.T) {
	collector := NewCollectingEmitter()
	paced := NewPacedEmitter(collector, 0, 0)

	sleeps := 0
	paced.sleep = func(time.Duration) { sleeps++ }

	for _, stage := range []types.Stage{types.StageGeocoding, types.StageFlights, types.StageTransit} {
		require.NoError(t, paced.Emit(types.ProgressUpdate{Stage: stage}))
	}
	assert.Zero(t, sleeps)
}

func TestCollectingEmitter_SnapshotIsIndependent(t *testing.T) {
	collector := NewCollectingEmitter()
	require.NoError(t, collector.Emit(types.ProgressUpdate{Stage: types.StageGeocoding, ProgressPercent: 5}))

	snapshot := collector.Updates()
	require.NoError(t, collector.Emit(types.ProgressUpdate{Stage: types.StageFlights, ProgressPercent: 15}))

	assert.Len(t, snapshot, 1)
	assert.Len(t, collector.Updates(), 2)
}

func TestStageBoundsAreMonotonic(t *testing.T) {
	prevUpper := -1
	for _, stage := range []types.Stage{
		types.StageGeocoding, types.StageFlights, types.StageTransit,
		types.StageDriving, types.StageHotels, types.StagePins, types.StageReady,
	} {
		b, ok := stage.Bounds()
		require.True(t, ok, "stage %s must have bounds", stage)
		assert.Greater(t, b.Lower, prevUpper, "stage %s lower bound must exceed previous upper", stage)
		assert.GreaterOrEqual(t, b.Upper, b.Lower)
		prevUpper = b.Upper
	}

	_, ok := types.StageError.Bounds()
	assert.False(t, ok, "the error stage carries no percent range of its own")
}
