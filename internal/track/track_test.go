package track

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/raceline/internal/geom"
)

func squareCenterline() []geom.Point {
	return []geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}
}

func TestNewRequiresThreePoints(t *testing.T) {
	_, err := New([]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, 10)
	assert.Error(t, err)

	data, err := New(squareCenterline(), 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, data.HalfWidth)
}

func TestNewCopiesPoints(t *testing.T) {
	points := squareCenterline()
	data, err := New(points, 10)
	require.NoError(t, err)

	points[0].X = 999
	assert.Equal(t, 0.0, data.Points[0].X, "track data must not alias caller points")
}

func TestCloneIsDeep(t *testing.T) {
	data, err := New(squareCenterline(), 10)
	require.NoError(t, err)
	data.Boundaries = [][]geom.Point{{{X: 40, Y: 40}, {X: 60, Y: 40}, {X: 50, Y: 60}}}

	clone := data.Clone()
	clone.Points[0].X = 999
	clone.Boundaries[0][0].X = 999

	assert.Equal(t, 0.0, data.Points[0].X)
	assert.Equal(t, 40.0, data.Boundaries[0][0].X)
}

func TestInBounds(t *testing.T) {
	data, err := New(squareCenterline(), 10)
	require.NoError(t, err)

	t.Run("no boundaries means everywhere is in bounds", func(t *testing.T) {
		assert.True(t, data.InBounds(geom.Point{X: -1000, Y: -1000}))
	})

	t.Run("inside a forbidden polygon is out of bounds", func(t *testing.T) {
		data.Boundaries = [][]geom.Point{{{X: 40, Y: 40}, {X: 60, Y: 40}, {X: 60, Y: 60}, {X: 40, Y: 60}}}
		assert.False(t, data.InBounds(geom.Point{X: 50, Y: 50}))
		assert.True(t, data.InBounds(geom.Point{X: 10, Y: 10}))
	})
}

func TestLength(t *testing.T) {
	data, err := New(squareCenterline(), 10)
	require.NoError(t, err)
	assert.Equal(t, 300.0, data.Length())
}

func TestBuildSegments(t *testing.T) {
	segments := BuildSegments(squareCenterline())
	require.Len(t, segments, 3)

	// First segment has no previous neighbour: a straight.
	assert.True(t, math.IsInf(segments[0].Radius, 1))
	assert.Equal(t, 100.0, segments[0].Length)

	// Interior segments carry the circumradius of their triple.
	for i := 1; i < len(segments); i++ {
		assert.Greater(t, segments[i].Radius, 0.0)
		assert.False(t, math.IsInf(segments[i].Radius, 1), "90° corner is not a straight")
	}
}

func TestBuildSegmentsShortInput(t *testing.T) {
	assert.Nil(t, BuildSegments([]geom.Point{{X: 1, Y: 1}}))
	assert.Len(t, BuildSegments([]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}), 1)
}

func TestParseRecord(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		rec := &Record{TrackPoints: squareCenterline(), RacingLine: []geom.Point{{X: 1, Y: 2}}}
		data, err := rec.Marshal()
		require.NoError(t, err)

		parsed, err := ParseRecord(data)
		require.NoError(t, err)
		assert.Equal(t, rec.TrackPoints, parsed.TrackPoints)
		assert.Equal(t, rec.RacingLine, parsed.RacingLine)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseRecord([]byte("not json"))
		assert.Error(t, err)
	})

	t.Run("rejects too few points", func(t *testing.T) {
		_, err := ParseRecord([]byte(`{"trackPoints":[{"x":0,"y":0},{"x":1,"y":1}]}`))
		assert.Error(t, err)
	})
}
