package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/raceline/internal/geom"
	"github.com/banshee-data/raceline/internal/httputil"
	"github.com/banshee-data/raceline/internal/runs"
	"github.com/banshee-data/raceline/internal/track"
)

// lineChart renders a quick HTML scatter of a run's centerline against
// its racing line using go-echarts, coloured by the speed profile.
// This is a debugging view, not the drawing UI.
// Query params:
//   - id (optional; defaults to the current run)
func (s *Server) lineChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	var rec *runs.Record
	if id := r.URL.Query().Get("id"); id != "" {
		stored, err := s.store.GetRun(id)
		if err != nil {
			httputil.NotFound(w, fmt.Sprintf("run not found: %v", err))
			return
		}
		rec = stored
	} else {
		snap := s.manager.Snapshot()
		rec = &snap
	}
	if len(rec.TrackPoints) == 0 {
		httputil.NotFound(w, "run has no track points")
		return
	}

	cfg := s.PhysicsSnapshot()
	cfg.SetGrip(rec.Grip)

	// Speed along the racing line drives the colour ramp.
	var speeds []float64
	if len(rec.RacingLine) >= 2 {
		segments := track.BuildSegments(rec.RacingLine)
		speeds = cfg.SpeedProfile(segments)
	}

	pad := 0.0
	expand := func(pts []geom.Point) {
		for _, p := range pts {
			if v := max(absf(p.X), absf(p.Y)); v > pad {
				pad = v
			}
		}
	}
	expand(rec.TrackPoints)
	expand(rec.RacingLine)
	pad *= 1.05
	if pad == 0 {
		pad = 1.0
	}

	centerline := make([]opts.ScatterData, 0, len(rec.TrackPoints))
	for _, p := range rec.TrackPoints {
		centerline = append(centerline, opts.ScatterData{Value: []interface{}{p.X, p.Y, 0.0}})
	}

	line := make([]opts.ScatterData, 0, len(rec.RacingLine))
	maxSpeed := 1.0
	for i, p := range rec.RacingLine {
		speed := 0.0
		if i < len(speeds) {
			speed = speeds[i]
		} else if len(speeds) > 0 {
			speed = speeds[len(speeds)-1]
		}
		if speed > maxSpeed {
			maxSpeed = speed
		}
		line = append(line, opts.ScatterData{Value: []interface{}{p.X, p.Y, speed}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Racing Line", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Racing Line", Subtitle: fmt.Sprintf("run=%s status=%s lap=%.2fs", rec.RunID, rec.Status, rec.LapTime)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxSpeed),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)

	scatter.AddSeries("centerline", centerline, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	scatter.AddSeries("racing line", line, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
