package catalog

import "strings"

type Rating int

const (
	NotRated Rating = iota
	OneStar
	TwoStar
	ThreeStar
	FourStar
	FiveStar
)

const (
	DefaultRating = NotRated
	maxStars      = int(FiveStar)

	starFull  = "★"
	starEmpty = "☆"
)

// ConvertRating maps a raw star count onto the scale. Values outside 0..5
// yield DefaultRating rather than an error.
func ConvertRating(stars int) Rating {
	if stars < 0 || stars > maxStars {
		return DefaultRating
	}
	return Rating(stars)
}

// Stars renders the rating as five glyphs, e.g. ★★★☆☆.
func (r Rating) Stars() string {
	n := int(ConvertRating(int(r)))
	return strings.Repeat(starFull, n) + strings.Repeat(starEmpty, maxStars-n)
}

func (r Rating) String() string { return r.Stars() }

// averageRating is the half-up rounded mean of the ordinals. An empty list
// yields DefaultRating.
func averageRating(reviews []Review) Rating {
	n := len(reviews)
	if n == 0 {
		return DefaultRating
	}

	sum := 0
	for _, rv := range reviews {
		sum += int(rv.rating)
	}
	// floor(sum/n + 1/2) on non-negative integers
	return ConvertRating((2*sum + n) / (2 * n))
}
