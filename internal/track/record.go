package track

import (
	"encoding/json"
	"fmt"

	"github.com/banshee-data/raceline/internal/geom"
)

// Record is the persisted/transport framing shared with the drawing
// surface: the drawn centerline and, once computed, the racing line.
// The framing itself is owned by the UI layer; this side only produces
// and consumes the point arrays inside it.
type Record struct {
	TrackPoints []geom.Point `json:"trackPoints"`
	RacingLine  []geom.Point `json:"racingLine,omitempty"`
}

// ParseRecord decodes a Record from JSON, validating that the track
// points are usable as a centerline.
func ParseRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse track record: %w", err)
	}
	if len(rec.TrackPoints) < MinCenterlinePoints {
		return nil, fmt.Errorf("track record needs at least %d track points, got %d",
			MinCenterlinePoints, len(rec.TrackPoints))
	}
	return &rec, nil
}

// Marshal encodes the record as indented JSON for files and HTTP
// responses.
func (r *Record) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode track record: %w", err)
	}
	return data, nil
}
