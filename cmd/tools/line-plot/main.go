// Command line-plot renders a track record (centerline plus racing
// line) to a PNG for quick visual inspection outside the browser.
package main

import (
	"flag"
	"image/color"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/raceline/internal/geom"
	"github.com/banshee-data/raceline/internal/security"
	"github.com/banshee-data/raceline/internal/track"
)

var (
	inPath  = flag.String("in", "", "Path to a track record JSON file (required)")
	outPath = flag.String("out", "raceline.png", "Output PNG path")
	size    = flag.Float64("size", 8, "Plot size in inches")
)

func toXYs(points []geom.Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		xys[i].X = p.X
		xys[i].Y = p.Y
	}
	return xys
}

func main() {
	flag.Parse()

	if *inPath == "" {
		log.Fatal("-in is required")
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		log.Fatalf("failed to read record: %v", err)
	}
	rec, err := track.ParseRecord(data)
	if err != nil {
		log.Fatalf("invalid record: %v", err)
	}

	p := plot.New()
	p.Title.Text = "Racing line"
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	centerline, err := plotter.NewLine(toXYs(rec.TrackPoints))
	if err != nil {
		log.Fatalf("failed to build centerline: %v", err)
	}
	centerline.Width = vg.Points(1)
	centerline.Color = color.Gray{Y: 128}
	p.Add(centerline)
	p.Legend.Add("centerline", centerline)

	if len(rec.RacingLine) > 1 {
		line, err := plotter.NewLine(toXYs(rec.RacingLine))
		if err != nil {
			log.Fatalf("failed to build racing line: %v", err)
		}
		line.Width = vg.Points(2)
		line.Color = color.RGBA{R: 220, G: 40, B: 40, A: 255}
		p.Add(line)
		p.Legend.Add("racing line", line)
	}

	if err := security.ValidateExportPath(*outPath); err != nil {
		log.Fatalf("refusing output path: %v", err)
	}
	if err := p.Save(vg.Length(*size)*vg.Inch, vg.Length(*size)*vg.Inch, *outPath); err != nil {
		log.Fatalf("failed to save plot: %v", err)
	}
	log.Printf("[line-plot] wrote %s", *outPath)
}
