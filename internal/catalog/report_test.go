package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func newTestReporter(t *testing.T, s Store) *Reporter {
	t.Helper()
	return &Reporter{
		Store:      s,
		Formatters: newTestFormatters(t),
		Log:        zap.NewNop(),
		Dir:        filepath.Join(t.TempDir(), "reports"),
		Now:        func() time.Time { return fixedNow },
	}
}

func TestReportSortsReviewsAndWritesFile(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	s.Insert(ctx, NewDrink(101, "Tea", price("1.99"), NotRated), nil)
	for _, rv := range []Review{
		NewReview(TwoStar, "Rather weak tea"),
		NewReview(FiveStar, "Perfect tea"),
		NewReview(FourStar, "Fine tea"),
	} {
		_, err := s.Review(ctx, 101, rv.Rating(), rv.Comment())
		require.NoError(t, err)
	}
	r := newTestReporter(t, s)

	text, err := r.Report(ctx, 101, "en-GB", "alice")
	require.NoError(t, err)

	want := strings.Join([]string{
		"Tea, Price: £1.99, Rating: ★★★★☆, Best Before: 18/10/2026",
		"Review: ★★★★★\tPerfect tea",
		"Review: ★★★★☆\tFine tea",
		"Review: ★★☆☆☆\tRather weak tea",
		"",
	}, "\n")
	assert.Equal(t, want, text)

	onDisk, err := os.ReadFile(filepath.Join(r.Dir, "product101_alice_report.txt"))
	require.NoError(t, err)
	assert.Equal(t, want, string(onDisk))
}

func TestReportOverwritesPerClient(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	s.Insert(ctx, NewDrink(101, "Tea", price("1.99"), NotRated), nil)
	r := newTestReporter(t, s)

	first, err := r.Report(ctx, 101, "en-GB", "bob")
	require.NoError(t, err)
	assert.Contains(t, first, "Not reviewed")

	_, err = s.Review(ctx, 101, ThreeStar, "ok")
	require.NoError(t, err)
	_, err = r.Report(ctx, 101, "en-GB", "bob")
	require.NoError(t, err)
	_, err = r.Report(ctx, 101, "pt-BR", "carol")
	require.NoError(t, err)

	bob, err := os.ReadFile(filepath.Join(r.Dir, "product101_bob_report.txt"))
	require.NoError(t, err)
	assert.NotContains(t, string(bob), "Not reviewed")
	assert.Contains(t, string(bob), "Review: ★★★☆☆\tok")

	carol, err := os.ReadFile(filepath.Join(r.Dir, "product101_carol_report.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(carol), "Avaliação: ★★★☆☆\tok")
}

func TestReportNotFound(t *testing.T) {
	r := newTestReporter(t, NewMemStore())

	text, err := r.Report(context.Background(), 7, "en-GB", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, text)
}

func TestReportWriteFailureStillReturnsText(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	s.Insert(ctx, NewDrink(101, "Tea", price("1.99"), NotRated), nil)
	r := newTestReporter(t, s)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	r.Dir = filepath.Join(blocker, "reports")

	text, err := r.Report(ctx, 101, "en-GB", "alice")
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Contains(t, text, "Tea, Price: £1.99")
}

func TestSanitizeClient(t *testing.T) {
	assert.Equal(t, "alice", sanitizeClient("alice"))
	assert.Equal(t, ".._.._etc", sanitizeClient("../../etc"))
	assert.Equal(t, "anonymous", sanitizeClient(""))
	assert.Equal(t, "anonymous", sanitizeClient(".."))
}
