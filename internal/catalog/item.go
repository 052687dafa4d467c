package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind uint8

const (
	KindDrink Kind = iota + 1
	KindFood
)

const (
	kindTagDrink = "D"
	kindTagFood  = "F"
)

// DiscountRate applies uniformly to every item kind.
var DiscountRate = decimal.RequireFromString("0.1")

func (k Kind) Tag() string {
	switch k {
	case KindDrink:
		return kindTagDrink
	case KindFood:
		return kindTagFood
	default:
		return ""
	}
}

func kindFromTag(tag string) (Kind, bool) {
	switch tag {
	case kindTagDrink:
		return KindDrink, true
	case kindTagFood:
		return KindFood, true
	default:
		return 0, false
	}
}

// Item is an immutable catalog entry. Two items denote the same entry iff
// their IDs match; rating changes go through ApplyRating.
type Item struct {
	id     int
	name   string
	price  decimal.Decimal
	rating Rating
	kind   Kind

	// set for KindFood only
	bestBefore time.Time
}

func NewFood(id int, name string, price decimal.Decimal, rating Rating, bestBefore time.Time) Item {
	return Item{
		id:         id,
		name:       name,
		price:      price,
		rating:     rating,
		kind:       KindFood,
		bestBefore: bestBefore,
	}
}

func NewDrink(id int, name string, price decimal.Decimal, rating Rating) Item {
	return Item{
		id:     id,
		name:   name,
		price:  price,
		rating: rating,
		kind:   KindDrink,
	}
}

func (it Item) ID() int                { return it.id }
func (it Item) Name() string           { return it.name }
func (it Item) Price() decimal.Decimal { return it.price }
func (it Item) Rating() Rating         { return it.rating }
func (it Item) Kind() Kind             { return it.kind }

// Discount is the flat DiscountRate for every kind.
func (it Item) Discount() decimal.Decimal { return DiscountRate }

// BestBefore returns the stored date for food and now for everything else.
func (it Item) BestBefore(now time.Time) time.Time {
	if it.kind == KindFood {
		return it.bestBefore
	}
	return now
}

// Same reports whether both values denote the same catalog entry.
func (it Item) Same(other Item) bool { return it.id == other.id }

// ApplyRating returns a copy of it carrying r. The receiver is left as is.
func (it Item) ApplyRating(r Rating) Item {
	switch it.kind {
	case KindFood:
		return NewFood(it.id, it.name, it.price, r, it.bestBefore)
	case KindDrink:
		return NewDrink(it.id, it.name, it.price, r)
	default:
		out := it
		out.rating = r
		return out
	}
}
