package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApplyRatingKeepsVariant(t *testing.T) {
	bb := time.Date(2030, 1, 5, 0, 0, 0, 0, time.UTC)
	cake := NewFood(103, "Cake", decimal.RequireFromString("10.55"), NotRated, bb)

	rated := cake.ApplyRating(ThreeStar)

	assert.Equal(t, ThreeStar, rated.Rating())
	assert.Equal(t, KindFood, rated.Kind())
	assert.True(t, rated.BestBefore(time.Now()).Equal(bb))
	assert.Equal(t, "Cake", rated.Name())
	assert.True(t, rated.Price().Equal(decimal.RequireFromString("10.55")))
	assert.True(t, rated.Same(cake))

	assert.Equal(t, NotRated, cake.Rating(), "receiver must not change")
}

func TestDrinkBestBeforeIsNow(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	tea := NewDrink(101, "Tea", decimal.RequireFromString("1.99"), NotRated)

	assert.Equal(t, now, tea.BestBefore(now))
	assert.Equal(t, KindDrink, tea.ApplyRating(FourStar).Kind())
}

func TestDiscountIsFlat(t *testing.T) {
	tea := NewDrink(101, "Tea", decimal.RequireFromString("1.99"), FiveStar)
	cake := NewFood(103, "Cake", decimal.RequireFromString("10.55"), OneStar, time.Now())

	assert.True(t, tea.Discount().Equal(decimal.RequireFromString("0.1")))
	assert.True(t, cake.Discount().Equal(tea.Discount()))
}

func TestSameComparesIdentityOnly(t *testing.T) {
	a := NewDrink(1, "Tea", decimal.NewFromInt(1), OneStar)
	b := NewFood(1, "Other", decimal.NewFromInt(9), FiveStar, time.Now())
	c := NewDrink(2, "Tea", decimal.NewFromInt(1), OneStar)

	assert.True(t, a.Same(b))
	assert.False(t, a.Same(c))
}

func TestSortReviews(t *testing.T) {
	in := []Review{
		NewReview(TwoStar, "weak"),
		NewReview(FiveStar, "perfect"),
		NewReview(FourStar, "fine"),
		NewReview(FiveStar, "great"),
	}

	out := SortReviews(in)

	assert.Equal(t, []string{"perfect", "great", "fine", "weak"}, comments(out))
	assert.Equal(t, "weak", in[0].Comment(), "input must stay untouched")
}

func comments(rs []Review) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Comment())
	}
	return out
}
