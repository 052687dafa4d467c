package catalog

import "sort"

type Review struct {
	rating  Rating
	comment string
}

func NewReview(rating Rating, comment string) Review {
	return Review{rating: rating, comment: comment}
}

func (r Review) Rating() Rating  { return r.rating }
func (r Review) Comment() string { return r.comment }

// ReviewOrder sorts most favourable reviews first.
func ReviewOrder(a, b Review) bool { return a.rating > b.rating }

// SortReviews returns a sorted copy; equal ratings keep insertion order.
func SortReviews(reviews []Review) []Review {
	out := make([]Review, len(reviews))
	copy(out, reviews)
	sort.SliceStable(out, func(i, j int) bool { return ReviewOrder(out[i], out[j]) })
	return out
}
