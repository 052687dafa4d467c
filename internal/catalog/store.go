package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Filter selects items during enumeration. A nil Filter keeps everything.
// It runs without the store lock held.
type Filter func(Item) bool

// Order reports whether a sorts before b. A nil Order sorts by ID.
type Order func(a, b Item) bool

// Entry is one item together with its accumulated reviews.
type Entry struct {
	Item    Item
	Reviews []Review
}

// Snapshot is a point-in-time copy of the whole catalog, ordered by ID.
type Snapshot struct {
	Entries []Entry
}

type Store interface {
	Ping(ctx context.Context) error

	// Insert adds it with reviews unless the ID is taken and returns the
	// stored item. The bool reports whether it was inserted.
	Insert(ctx context.Context, it Item, reviews []Review) (Item, bool)
	Review(ctx context.Context, id int, r Rating, comment string) (Item, error)

	Find(ctx context.Context, id int) (Item, error)
	ItemWithReviews(ctx context.Context, id int) (Item, []Review, error)
	Enumerate(ctx context.Context, filter Filter, order Order) []Item
	DiscountTotals(ctx context.Context) map[Rating]decimal.Decimal
	Len(ctx context.Context) int

	Snapshot(ctx context.Context) Snapshot
	ReplaceAll(ctx context.Context, s Snapshot)
}
