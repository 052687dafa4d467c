package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// entry values are never mutated once stored; writers swap in a new one.
type entry struct {
	item    Item
	reviews []Review
}

type MemStore struct {
	mu sync.RWMutex
	m  map[int]*entry
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[int]*entry{}}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Insert(ctx context.Context, it Item, reviews []Review) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.m[it.id]; ok {
		return cur.item, false
	}
	s.m[it.id] = &entry{item: it, reviews: cloneReviews(reviews)}
	return it, true
}

func (s *MemStore) Review(ctx context.Context, id int, r Rating, comment string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.m[id]
	if !ok {
		return Item{}, fmt.Errorf("item with id %d: %w", id, ErrNotFound)
	}

	reviews := make([]Review, len(cur.reviews), len(cur.reviews)+1)
	copy(reviews, cur.reviews)
	reviews = append(reviews, NewReview(r, comment))

	it := cur.item.ApplyRating(averageRating(reviews))
	s.m[id] = &entry{item: it, reviews: reviews}
	return it, nil
}

func (s *MemStore) Find(ctx context.Context, id int) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.m[id]
	if !ok {
		return Item{}, fmt.Errorf("item with id %d: %w", id, ErrNotFound)
	}
	return e.item, nil
}

func (s *MemStore) ItemWithReviews(ctx context.Context, id int) (Item, []Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.m[id]
	if !ok {
		return Item{}, nil, fmt.Errorf("item with id %d: %w", id, ErrNotFound)
	}
	return e.item, cloneReviews(e.reviews), nil
}

func (s *MemStore) Enumerate(ctx context.Context, filter Filter, order Order) []Item {
	s.mu.RLock()
	all := make([]Item, 0, len(s.m))
	for _, e := range s.m {
		all = append(all, e.item)
	}
	s.mu.RUnlock()

	// filter and order run unlocked and may call back into the store.
	out := all[:0]
	for _, it := range all {
		if filter == nil || filter(it) {
			out = append(out, it)
		}
	}

	if order == nil {
		order = byID
	}
	sort.SliceStable(out, func(i, j int) bool { return order(out[i], out[j]) })
	return out
}

func (s *MemStore) DiscountTotals(ctx context.Context) map[Rating]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[Rating]decimal.Decimal{}
	for _, e := range s.m {
		r := e.item.Rating()
		out[r] = out[r].Add(e.item.Discount())
	}
	return out
}

func (s *MemStore) Len(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

func (s *MemStore) Snapshot(ctx context.Context) Snapshot {
	s.mu.RLock()
	out := Snapshot{Entries: make([]Entry, 0, len(s.m))}
	for _, e := range s.m {
		out.Entries = append(out.Entries, Entry{Item: e.item, Reviews: cloneReviews(e.reviews)})
	}
	s.mu.RUnlock()

	sort.Slice(out.Entries, func(i, j int) bool { return out.Entries[i].Item.id < out.Entries[j].Item.id })
	return out
}

// ReplaceAll swaps the whole table for the snapshot contents. Duplicate IDs
// in the snapshot keep their first occurrence.
func (s *MemStore) ReplaceAll(ctx context.Context, snap Snapshot) {
	m := make(map[int]*entry, len(snap.Entries))
	for _, e := range snap.Entries {
		if _, ok := m[e.Item.id]; ok {
			continue
		}
		m[e.Item.id] = &entry{item: e.Item, reviews: cloneReviews(e.Reviews)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = m
}

func byID(a, b Item) bool { return a.id < b.id }

func cloneReviews(in []Review) []Review {
	out := make([]Review, len(in))
	copy(out, in)
	return out
}
