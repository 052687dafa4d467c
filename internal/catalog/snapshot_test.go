package catalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() Snapshot {
	return Snapshot{Entries: []Entry{
		{
			Item:    NewDrink(101, "Tea", price("1.99"), ThreeStar),
			Reviews: []Review{NewReview(FourStar, "Nice"), NewReview(TwoStar, "Weak")},
		},
		{
			Item:    NewFood(103, "Cake", price("10.55"), NotRated, time.Date(2030, 1, 5, 0, 0, 0, 0, time.UTC)),
			Reviews: []Review{},
		},
	}}
}

func requireSameSnapshot(t *testing.T, want, got Snapshot) {
	t.Helper()
	require.Len(t, got.Entries, len(want.Entries))
	for i := range want.Entries {
		w, g := want.Entries[i], got.Entries[i]
		assert.Equal(t, w.Item.ID(), g.Item.ID())
		assert.Equal(t, w.Item.Name(), g.Item.Name())
		assert.True(t, w.Item.Price().Equal(g.Item.Price()), "price %s != %s", w.Item.Price(), g.Item.Price())
		assert.Equal(t, w.Item.Rating(), g.Item.Rating())
		assert.Equal(t, w.Item.Kind(), g.Item.Kind())
		if w.Item.Kind() == KindFood {
			assert.True(t, w.Item.BestBefore(time.Time{}).Equal(g.Item.BestBefore(time.Time{})))
		}
		assert.Equal(t, len(w.Reviews), len(g.Reviews))
		for j := range w.Reviews {
			assert.Equal(t, w.Reviews[j], g.Reviews[j])
		}
	}
}

func TestSnapshotEncodingRoundTrip(t *testing.T) {
	want := sampleSnapshot()

	blob, err := EncodeSnapshot(want)
	require.NoError(t, err)
	got, err := DecodeSnapshot(blob)
	require.NoError(t, err)

	requireSameSnapshot(t, want, got)
}

func TestDecodeSnapshotRejectsTampering(t *testing.T) {
	blob, err := EncodeSnapshot(sampleSnapshot())
	require.NoError(t, err)

	tampered := bytes.Replace(blob, []byte("Tea"), []byte("Tee"), 1)
	require.NotEqual(t, blob, tampered)

	_, err = DecodeSnapshot(tampered)
	assert.ErrorContains(t, err, "checksum")

	_, err = DecodeSnapshot([]byte("not json"))
	assert.Error(t, err)
}

func TestFileSinkLoadsNewestAndConsumesIt(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "tmp")
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	sink := &FileSink{Dir: dir, Now: func() time.Time { return now }}

	require.NoError(t, sink.Save(ctx, []byte("old")))
	now = now.Add(time.Minute)
	require.NoError(t, sink.Save(ctx, []byte("new")))

	blob, err := sink.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", string(blob))

	left, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, left, 1)

	blob, err = sink.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old", string(blob))

	_, err = sink.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestFileSinkMissingDir(t *testing.T) {
	sink := NewFileSink(filepath.Join(t.TempDir(), "absent"))

	_, err := sink.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}
