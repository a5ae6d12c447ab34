// Command raceline computes a racing line for a drawn track record
// from the command line, either inline or by submitting to a running
// raceline server.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cnkei/gospline"

	"github.com/banshee-data/raceline/internal/config"
	"github.com/banshee-data/raceline/internal/geom"
	"github.com/banshee-data/raceline/internal/httputil"
	"github.com/banshee-data/raceline/internal/runs"
	"github.com/banshee-data/raceline/internal/security"
	"github.com/banshee-data/raceline/internal/track"
	"github.com/banshee-data/raceline/internal/units"
)

var (
	trackPath  = flag.String("track", "", "Path to a track record JSON file (required)")
	outPath    = flag.String("out", "", "Path to write the result record JSON (defaults to stdout)")
	iterations = flag.Int("iterations", 0, "Annealing iteration count (0 = tuning default)")
	smoothing  = flag.Int("smoothing", 0, "Final smoothing resample density (0 = tuning default)")
	seed       = flag.Int64("seed", 0, "Random seed for reproducible runs (0 = time-seeded)")
	grip       = flag.Float64("grip", 0, "Grip coefficient override (0 = tuning default)")
	halfWidth  = flag.Float64("half-width", 0, "Track half-width override in drawing units")
	resample   = flag.Int("resample", 0, "Densify the drawn centerline to N points with a cubic spline before optimizing")
	serverURL  = flag.String("server", "", "Submit to a running raceline server instead of computing inline")
	speedUnits = flag.String("units", units.MPS, "Display units for speeds (mps, mph, kph)")
	configPath = flag.String("config", "", "Path to a tuning config JSON")
)

func main() {
	flag.Parse()

	if *trackPath == "" {
		log.Fatal("-track is required")
	}
	if !units.IsValid(*speedUnits) {
		log.Fatalf("invalid -units %q, want one of %v", *speedUnits, units.ValidUnits)
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	data, err := os.ReadFile(*trackPath)
	if err != nil {
		log.Fatalf("failed to read track file: %v", err)
	}
	rec, err := track.ParseRecord(data)
	if err != nil {
		log.Fatalf("invalid track file: %v", err)
	}

	points := rec.TrackPoints
	if *resample > 0 {
		points = resampleCenterline(points, *resample)
		log.Printf("[raceline] resampled centerline %d -> %d points", len(rec.TrackPoints), len(points))
	}

	cfg := tuning.PhysicsConfig()
	if *grip != 0 {
		cfg.SetGrip(*grip)
	}

	req := runs.Request{
		TrackPoints:     points,
		HalfWidth:       *halfWidth,
		Physics:         &cfg,
		Iterations:      *iterations,
		SmoothingPasses: *smoothing,
	}
	if req.HalfWidth == 0 {
		req.HalfWidth = tuning.GetTrackHalfWidth()
	}
	if req.Iterations == 0 {
		req.Iterations = tuning.GetIterations()
	}
	if req.SmoothingPasses == 0 {
		req.SmoothingPasses = tuning.GetSmoothingPasses()
	}
	if *seed != 0 {
		req.Seed = seed
	}

	var result *track.Record
	var lapTime float64
	if *serverURL != "" {
		result, lapTime, err = submitRemote(httputil.NewStandardClient(nil), *serverURL, req)
		if err != nil {
			// The server path failed: fall back to the identical
			// computation inline.
			log.Printf("[raceline] server request failed (%v), computing inline", err)
			result, lapTime, err = generateInline(req)
		}
	} else {
		result, lapTime, err = generateInline(req)
	}
	if err != nil {
		log.Fatalf("failed to generate racing line: %v", err)
	}

	speeds := cfg.SpeedProfile(track.BuildSegments(result.RacingLine))
	topSpeed := 0.0
	for _, v := range speeds {
		if v > topSpeed {
			topSpeed = v
		}
	}
	log.Printf("[raceline] lap time %s, top speed %.1f %s, %d points",
		units.FormatLapTime(lapTime), units.ConvertSpeed(topSpeed, *speedUnits), *speedUnits, len(result.RacingLine))

	out, err := result.Marshal()
	if err != nil {
		log.Fatalf("failed to encode result: %v", err)
	}
	if *outPath == "" {
		fmt.Println(string(out))
		return
	}
	if err := security.ValidateExportPath(*outPath); err != nil {
		log.Fatalf("refusing output path: %v", err)
	}
	if err := os.WriteFile(*outPath, out, 0o644); err != nil {
		log.Fatalf("failed to write result: %v", err)
	}
	log.Printf("[raceline] wrote %s", *outPath)
}

// generateInline runs the optimizer in-process through the same run
// manager code the server uses.
func generateInline(req runs.Request) (*track.Record, float64, error) {
	manager := runs.NewManager(nil, nil, req.HalfWidth, 0)
	return manager.GenerateSync(req)
}

// submitRemote posts the request to a running server's synchronous
// endpoint and decodes the finished record.
func submitRemote(client httputil.HTTPClient, baseURL string, req runs.Request) (*track.Record, float64, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := client.Post(baseURL+"/api/line/generate?wait=1", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, 0, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var out struct {
		Success bool          `json:"success"`
		Record  *track.Record `json:"optimized"`
		LapTime *float64      `json:"lap_time_s"`
		Error   string        `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, 0, fmt.Errorf("failed to decode response: %w", err)
	}
	if !out.Success || out.Record == nil {
		return nil, 0, fmt.Errorf("server reported failure: %s", out.Error)
	}
	lapTime := 0.0
	if out.LapTime != nil {
		lapTime = *out.LapTime
	}
	return out.Record, lapTime, nil
}

// resampleCenterline redistributes n points along the drawn centerline
// using natural cubic splines over the cumulative chord length. This
// smooths out the uneven point spacing of hand-drawn tracks before the
// optimizer fixes its search cardinality.
func resampleCenterline(points []geom.Point, n int) []geom.Point {
	if len(points) < 3 || n < 3 {
		return geom.ClonePoints(points)
	}

	s := make([]float64, len(points))
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		if i > 0 {
			s[i] = s[i-1] + geom.Distance(points[i-1], p)
		}
		xs[i] = p.X
		ys[i] = p.Y
	}
	total := s[len(s)-1]
	if total == 0 {
		return geom.ClonePoints(points)
	}

	splineX := gospline.NewCubicSpline(s, xs)
	splineY := gospline.NewCubicSpline(s, ys)

	out := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		at := total * float64(i) / float64(n-1)
		out[i] = geom.Point{X: splineX.At(at), Y: splineY.At(at)}
	}
	return out
}
