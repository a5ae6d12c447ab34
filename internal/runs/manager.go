package runs

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/banshee-data/raceline/internal/geom"
	"github.com/banshee-data/raceline/internal/monitoring"
	"github.com/banshee-data/raceline/internal/physics"
	"github.com/banshee-data/raceline/internal/raceline"
	"github.com/banshee-data/raceline/internal/timeutil"
	"github.com/banshee-data/raceline/internal/track"
)

// Status labels the coarse phases of a run visible to callers.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusOptimizing Status = "optimizing"
	StatusSmoothing  Status = "smoothing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Request is a complete input snapshot for one optimization run. The
// manager deep-copies the point slices on submission, so the caller may
// keep editing its own copies while the run is in flight.
type Request struct {
	TrackPoints []geom.Point    `json:"trackPoints"`
	Boundaries  [][]geom.Point  `json:"boundaries,omitempty"`
	HalfWidth   float64         `json:"half_width,omitempty"`
	Physics     *physics.Config `json:"physics,omitempty"`
	Iterations  int             `json:"iterations,omitempty"`
	// SmoothingPasses sets the resample density of the final smoothing
	// step; zero uses the manager default.
	SmoothingPasses int    `json:"smoothing_passes,omitempty"`
	Seed            *int64 `json:"seed,omitempty"`
}

// Manager owns the single meaningful in-flight optimization run. A new
// Generate supersedes a running one: the old run is cancelled and its
// result discarded rather than coordinated with. All state reads go
// through snapshot getters that deep-copy.
type Manager struct {
	mu     sync.RWMutex
	store  *Store
	clock  timeutil.Clock
	cancel context.CancelFunc
	state  Record
	// generation identifies the current run; a superseded goroutine
	// notices its generation is stale and discards its result.
	generation uint64

	defaultHalfWidth       float64
	defaultSmoothingPasses int
}

// NewManager creates a run manager. store may be nil (runs are not
// persisted) and clock may be nil (the real clock is used).
// defaultSmoothingPasses applies to requests that leave the smoothing
// density unset; zero falls through to the optimizer's own default.
func NewManager(store *Store, clock timeutil.Clock, defaultHalfWidth float64, defaultSmoothingPasses int) *Manager {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Manager{
		store:                  store,
		clock:                  clock,
		defaultHalfWidth:       defaultHalfWidth,
		defaultSmoothingPasses: defaultSmoothingPasses,
	}
}

// prepare validates the request and builds the isolated inputs a run
// needs: track data, physics snapshot and the heuristic starting line.
func (m *Manager) prepare(req Request) (*track.Data, physics.Config, []geom.Point, error) {
	halfWidth := req.HalfWidth
	if halfWidth <= 0 {
		halfWidth = m.defaultHalfWidth
	}

	data, err := track.New(req.TrackPoints, halfWidth)
	if err != nil {
		return nil, physics.Config{}, nil, err
	}
	for _, b := range req.Boundaries {
		data.Boundaries = append(data.Boundaries, geom.ClonePoints(b))
	}

	cfg := physics.DefaultConfig()
	if req.Physics != nil {
		cfg = *req.Physics
		cfg.SetGrip(cfg.Grip)
	}

	initial := raceline.Heuristic(data.Points, data.HalfWidth)
	return data, cfg, initial, nil
}

// execute is the one implementation behind both the background and the
// synchronous paths; only where it runs differs.
func (m *Manager) execute(data *track.Data, cfg physics.Config, initial []geom.Point, req Request, progress func(string)) raceline.Result {
	var rng *rand.Rand
	if req.Seed != nil {
		rng = rand.New(rand.NewSource(*req.Seed))
	}
	passes := req.SmoothingPasses
	if passes <= 0 {
		passes = m.defaultSmoothingPasses
	}
	return raceline.Optimize(initial, data, cfg, raceline.Options{
		Iterations:      req.Iterations,
		SmoothingPasses: passes,
		Rand:            rng,
		Progress:        progress,
	})
}

// Generate starts a background optimization run, superseding any run
// already in flight, and returns the new run's ID immediately.
func (m *Manager) Generate(ctx context.Context, req Request) (string, error) {
	data, cfg, initial, err := m.prepare(req)
	if err != nil {
		return "", err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	// The run must outlive the submitting request's context (an HTTP
	// caller disconnects as soon as it has the run ID); only a
	// superseding Generate or Stop may cancel it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel
	m.generation++
	gen := m.generation

	now := m.clock.Now()
	runID := uuid.New().String()
	m.state = Record{
		RunID:       runID,
		CreatedAt:   now,
		Status:      StatusQueued,
		Iterations:  req.Iterations,
		Seed:        req.Seed,
		Grip:        cfg.Grip,
		TrackPoints: geom.ClonePoints(data.Points),
	}
	rec := m.state
	m.mu.Unlock()

	if err := m.store.InsertRun(&rec); err != nil {
		monitoring.Logf("[runs] failed to persist run %s: %v", runID, err)
	}

	go m.run(runCtx, gen, runID, data, cfg, initial, req)
	return runID, nil
}

// run executes one background run to completion, discarding the result
// wholesale if the run has been superseded in the meantime.
func (m *Manager) run(ctx context.Context, gen uint64, runID string, data *track.Data, cfg physics.Config, initial []geom.Point, req Request) {
	defer func() {
		if r := recover(); r != nil {
			m.finishError(gen, runID, fmt.Sprintf("optimization panicked: %v", r))
		}
	}()

	result := m.execute(data, cfg, initial, req, func(phase string) {
		m.setPhase(gen, runID, Status(phase))
	})

	select {
	case <-ctx.Done():
		monitoring.Logf("[runs] run %s superseded, discarding result", runID)
		return
	default:
	}

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return
	}
	now := m.clock.Now()
	m.state.Status = StatusComplete
	m.state.RacingLine = geom.ClonePoints(result.Line)
	m.state.LapTime = result.LapTime
	m.state.Score = result.Score
	m.state.CompletedAt = &now
	m.mu.Unlock()

	if err := m.store.CompleteRun(runID, result.Line, result.LapTime, result.Score, now); err != nil {
		monitoring.Logf("[runs] failed to persist result for run %s: %v", runID, err)
	}
	monitoring.Logf("[runs] run %s complete: lap time %.2fs score %.3f", runID, result.LapTime, result.Score)
}

// GenerateSync runs the identical computation inline and returns the
// result directly. This is the fallback path when background execution
// is unavailable; behaviour and results match Generate, only blocking
// differs.
func (m *Manager) GenerateSync(req Request) (*track.Record, float64, error) {
	data, cfg, initial, err := m.prepare(req)
	if err != nil {
		return nil, 0, err
	}
	result := m.execute(data, cfg, initial, req, nil)
	return &track.Record{
		TrackPoints: geom.ClonePoints(data.Points),
		RacingLine:  result.Line,
	}, result.LapTime, nil
}

// setPhase updates the in-memory and persisted status, unless the run
// has been superseded.
func (m *Manager) setPhase(gen uint64, runID string, status Status) {
	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return
	}
	m.state.Status = status
	m.mu.Unlock()

	if err := m.store.UpdateStatus(runID, status); err != nil {
		monitoring.Logf("[runs] failed to persist status for run %s: %v", runID, err)
	}
}

func (m *Manager) finishError(gen uint64, runID, msg string) {
	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return
	}
	now := m.clock.Now()
	m.state.Status = StatusError
	m.state.Error = msg
	m.state.CompletedAt = &now
	m.mu.Unlock()

	if err := m.store.FailRun(runID, msg, now); err != nil {
		monitoring.Logf("[runs] failed to persist error for run %s: %v", runID, err)
	}
}

// Snapshot returns a deep copy of the current run state.
func (m *Manager) Snapshot() Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec := m.state
	rec.TrackPoints = geom.ClonePoints(m.state.TrackPoints)
	rec.RacingLine = geom.ClonePoints(m.state.RacingLine)
	return rec
}

// Stop cancels any in-flight run.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}
