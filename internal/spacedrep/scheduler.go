package spacedrep

import (
	"context"
	"fmt"
	"time"

	"github.com/matze/zk-spaced/internal/store"
)

// Item is a reviewable unit of content supplied by the caller.
type Item struct {
	ID    string
	Title string
	Body  string
}

// Review pairs an item with its mutable scheduling state.
// Grading through Record.Update changes the state held by the Store.
type Review struct {
	Item   Item
	Record *Record
}

// Store maps item identifiers to their scheduling state and selects due items.
// It is not safe for concurrent use.
type Store struct {
	backend store.Backend
	records map[string]*Record
	items   []Item
	known   map[string]int // item ID -> index into items
}

// Open loads the snapshot from backend and registers items. Items without a
// stored record get a fresh one anchored at now. Records of items that are no
// longer supplied are kept, but cannot be selected for review.
func Open(ctx context.Context, backend store.Backend, now time.Time, items []Item) (*Store, error) {
	s := &Store{
		backend: backend,
		records: make(map[string]*Record),
		known:   make(map[string]int, len(items)),
	}

	data, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.loadSnapshot(data); err != nil {
		return nil, &store.CorruptError{Path: backend.Location(), Err: err}
	}

	for _, item := range items {
		if _, dup := s.known[item.ID]; dup {
			continue
		}
		if _, ok := s.records[item.ID]; !ok {
			s.records[item.ID] = NewRecord(now)
		}
		s.known[item.ID] = len(s.items)
		s.items = append(s.items, item)
	}

	return s, nil
}

// NextDue returns an item that needs review at now, or nil if none does.
// Which of several due items is returned is not part of the contract; this
// implementation takes the first in the order items were supplied.
func (s *Store) NextDue(now time.Time) *Review {
	return s.NextDueExcept(now, nil)
}

// NextDueExcept is NextDue ignoring every item for which skip returns true.
// A nil skip ignores nothing.
func (s *Store) NextDueExcept(now time.Time, skip func(Item) bool) *Review {
	for _, item := range s.items {
		if skip != nil && skip(item) {
			continue
		}
		r := s.records[item.ID]
		if r.NeedsReview(now) {
			return &Review{Item: item, Record: r}
		}
	}
	return nil
}

// CountDue returns how many items need review at now, ignoring those for
// which skip returns true.
func (s *Store) CountDue(now time.Time, skip func(Item) bool) int {
	n := 0
	for _, item := range s.items {
		if skip != nil && skip(item) {
			continue
		}
		if s.records[item.ID].NeedsReview(now) {
			n++
		}
	}
	return n
}

// Due returns every item that needs review at now, in supply order.
func (s *Store) Due(now time.Time) []Review {
	var due []Review
	for _, item := range s.items {
		r := s.records[item.ID]
		if r.NeedsReview(now) {
			due = append(due, Review{Item: item, Record: r})
		}
	}
	return due
}

// Lookup returns the review handle for id. Identifiers with a stored record
// but no supplied item resolve to a bare Item carrying only the ID.
func (s *Store) Lookup(id string) (*Review, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	item := Item{ID: id}
	if i, ok := s.known[id]; ok {
		item = s.items[i]
	}
	return &Review{Item: item, Record: r}, nil
}

// Items returns the supplied items in order.
func (s *Store) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of stored records, including stale ones.
func (s *Store) Len() int {
	return len(s.records)
}

// Persist writes every record through the backend, replacing the previous
// snapshot in full.
func (s *Store) Persist(ctx context.Context) error {
	return s.backend.Save(ctx, s.SnapshotData())
}

// Location describes where the snapshot is stored.
func (s *Store) Location() string {
	return s.backend.Location()
}

// Stats summarizes the store at a point in time.
type Stats struct {
	Records       int     // stored records, including stale ones
	Known         int     // records of supplied items
	Due           int     // supplied items needing review
	Failed        int     // supplied items whose last recall failed
	Stale         int     // records without a supplied item
	MeanEasiness  float64 // over supplied items
	LongestStreak int
	NextDueAt     time.Time // earliest due date among items not yet due; zero if none
}

// Stats computes summary counts at now.
func (s *Store) Stats(now time.Time) Stats {
	st := Stats{
		Records: len(s.records),
		Known:   len(s.items),
		Stale:   len(s.records) - len(s.items),
	}

	var efSum float64
	for _, item := range s.items {
		r := s.records[item.ID]
		efSum += r.EasinessFactor
		if r.Failed {
			st.Failed++
		}
		if r.RecallStreak > st.LongestStreak {
			st.LongestStreak = r.RecallStreak
		}
		if r.NeedsReview(now) {
			st.Due++
			continue
		}
		if st.NextDueAt.IsZero() || r.DueAt().Before(st.NextDueAt) {
			st.NextDueAt = r.DueAt()
		}
	}
	if len(s.items) > 0 {
		st.MeanEasiness = efSum / float64(len(s.items))
	}
	return st
}
