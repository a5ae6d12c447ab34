package runs

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/raceline/internal/db"
	"github.com/banshee-data/raceline/internal/geom"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database.DB)
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	seed := int64(42)

	rec := &Record{
		RunID:       "run-1",
		CreatedAt:   now,
		Status:      StatusQueued,
		Iterations:  30,
		Seed:        &seed,
		Grip:        1.1,
		TrackPoints: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: 3, Y: 4}},
	}
	require.NoError(t, store.InsertRun(rec))

	require.NoError(t, store.UpdateStatus("run-1", StatusOptimizing))

	line := []geom.Point{{X: 0, Y: 0}, {X: 2, Y: 2}}
	require.NoError(t, store.CompleteRun("run-1", line, 12.5, 13.1, now.Add(time.Second)))

	got, err := store.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Equal(t, rec.TrackPoints, got.TrackPoints)
	assert.Equal(t, line, got.RacingLine)
	assert.Equal(t, 12.5, got.LapTime)
	assert.Equal(t, 13.1, got.Score)
	require.NotNil(t, got.Seed)
	assert.Equal(t, seed, *got.Seed)
	require.NotNil(t, got.CompletedAt)
}

func TestStoreFailRun(t *testing.T) {
	store := newTestStore(t)
	rec := &Record{
		RunID:       "run-2",
		CreatedAt:   time.Now(),
		Status:      StatusQueued,
		TrackPoints: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}},
	}
	require.NoError(t, store.InsertRun(rec))
	require.NoError(t, store.FailRun("run-2", "optimization panicked", time.Now()))

	got, err := store.GetRun("run-2")
	require.NoError(t, err)
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, "optimization panicked", got.Error)
}

func TestStoreListRunsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	base := time.Now().UTC()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.InsertRun(&Record{
			RunID:       id,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			Status:      StatusQueued,
			TrackPoints: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}},
		}))
	}

	records, err := store.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0].RunID)
	assert.Equal(t, "b", records[1].RunID)
}

func TestNilStoreDropsWrites(t *testing.T) {
	var store *Store
	assert.NoError(t, store.InsertRun(&Record{RunID: "x"}))
	assert.NoError(t, store.UpdateStatus("x", StatusComplete))
	assert.NoError(t, store.CompleteRun("x", nil, 0, 0, time.Now()))
	assert.NoError(t, store.FailRun("x", "err", time.Now()))

	_, err := store.GetRun("x")
	assert.Error(t, err)
}

func TestGetRunMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetRun("nope")
	assert.Error(t, err)
}
