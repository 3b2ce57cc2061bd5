package types

// Stage names one phase of the planning pipeline, used for user-facing
// narration over the progress stream.
type Stage string

const (
	StageGeocoding Stage = "geocoding"
	StageFlights   Stage = "flights"
	StageTransit   Stage = "transit"
	StageDriving   Stage = "driving"
	StageHotels    Stage = "hotels"
	StagePins      Stage = "pins"
	StageReady     Stage = "ready"
	StageError     Stage = "error"
)

// StageBounds is the progress-percent range assigned to each stage. A
// stage's upper bound is always reached before the next stage's lower bound
// is emitted, keeping the stream monotonic.
type StageBounds struct {
	Lower int
	Upper int
}

var stageBounds = map[Stage]StageBounds{
	StageGeocoding: {Lower: 5, Upper: 10},
	StageFlights:   {Lower: 15, Upper: 25},
	StageTransit:   {Lower: 30, Upper: 40},
	StageDriving:   {Lower: 45, Upper: 50},
	StageHotels:    {Lower: 55, Upper: 60},
	StagePins:      {Lower: 62, Upper: 65},
	StageReady:     {Lower: 70, Upper: 70},
}

var stageOrder = []Stage{
	StageGeocoding,
	StageFlights,
	StageTransit,
	StageDriving,
	StageHotels,
	StagePins,
	StageReady,
}

// Bounds returns the percent range for the stage. The error stage has no
// range of its own; it carries whatever percent the pipeline reached.
func (s Stage) Bounds() (StageBounds, bool) {
	b, ok := stageBounds[s]
	return b, ok
}

// Order returns the stage's position in the fixed total order, or -1 for
// the error stage.
func (s Stage) Order() int {
	for i, stage := range stageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// IsTerminal reports whether no further events may follow this stage.
func (s Stage) IsTerminal() bool {
	return s == StageReady || s == StageError
}

// ProgressUpdate is one event on the plan progress stream.
type ProgressUpdate struct {
	Stage           Stage       `json:"stage"`
	Message         string      `json:"message"`
	ProgressPercent int         `json:"progressPercent"`
	Data            interface{} `json:"data,omitempty"`
}
