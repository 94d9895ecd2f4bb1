package spacedrep

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/matze/zk-spaced/internal/store"
)

// mockBackend is an in-memory store.Backend for tests.
type mockBackend struct {
	records map[string]store.RecordData
	loadErr error
	saveErr error
	saves   int
}

func (m *mockBackend) Load(_ context.Context) (map[string]store.RecordData, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.records, nil
}

func (m *mockBackend) Save(_ context.Context, records map[string]store.RecordData) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.records = records
	return nil
}

func (m *mockBackend) Reset(_ context.Context) error {
	m.records = nil
	return nil
}

func (m *mockBackend) Location() string { return "memory" }
func (m *mockBackend) Close() error     { return nil }

func items(ids ...string) []Item {
	out := make([]Item, len(ids))
	for i, id := range ids {
		out[i] = Item{ID: id, Title: "Title " + id, Body: "Body " + id}
	}
	return out
}

func openTestStore(t *testing.T, backend store.Backend, now time.Time, its []Item) *Store {
	t.Helper()
	s, err := Open(context.Background(), backend, now, its)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestOpen_EmptyBackendCreatesDefaults(t *testing.T) {
	s := openTestStore(t, &mockBackend{}, t0, items("a", "b"))

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	for _, id := range []string{"a", "b"} {
		rv, err := s.Lookup(id)
		if err != nil {
			t.Fatalf("lookup %q: %v", id, err)
		}
		r := rv.Record
		if !r.LastReviewed.Equal(t0) || r.RecallStreak != 0 || r.EasinessFactor != 2.5 || r.Interval != 0 || !r.Failed {
			t.Errorf("record %q = %+v, want defaults", id, *r)
		}
	}
}

func TestOpen_KeepsExistingRecords(t *testing.T) {
	backend := &mockBackend{records: map[string]store.RecordData{
		"a": {LastReviewed: "2024-12-01T00:00:00Z", RecallStreak: 3, EasinessFactor: 1.1, IntervalSecs: 8 * 86400},
	}}
	s := openTestStore(t, backend, t0, items("a", "new"))

	a, err := s.Lookup("a")
	if err != nil {
		t.Fatalf("lookup a: %v", err)
	}
	if a.Record.RecallStreak != 3 || a.Record.Interval != 8*Day || a.Record.Failed {
		t.Errorf("record a = %+v, want stored values", *a.Record)
	}
	if a.Item.Title != "Title a" {
		t.Errorf("item title = %q, want %q", a.Item.Title, "Title a")
	}

	fresh, err := s.Lookup("new")
	if err != nil {
		t.Fatalf("lookup new: %v", err)
	}
	if !fresh.Record.LastReviewed.Equal(t0) || !fresh.Record.Failed {
		t.Errorf("record new = %+v, want defaults at t0", *fresh.Record)
	}
}

func TestOpen_RetainsStaleRecords(t *testing.T) {
	backend := &mockBackend{records: map[string]store.RecordData{
		"gone": {LastReviewed: "2024-12-01T00:00:00Z", EasinessFactor: 2.5, Failed: true},
	}}
	s := openTestStore(t, backend, t0, items("a"))

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	// Stale records are failed but never selected.
	for rv := s.NextDue(t0); rv != nil; rv = s.NextDue(t0) {
		if rv.Item.ID == "gone" {
			t.Fatal("stale record selected for review")
		}
		if err := rv.Record.Update(GradeVeryEasy); err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	if err := s.Persist(context.Background()); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if _, ok := backend.records["gone"]; !ok {
		t.Error("stale record dropped from snapshot")
	}
}

func TestOpen_DuplicateItemsKeepFirst(t *testing.T) {
	its := []Item{{ID: "a", Title: "first"}, {ID: "a", Title: "second"}}
	s := openTestStore(t, &mockBackend{}, t0, its)

	if got := len(s.Items()); got != 1 {
		t.Fatalf("len(Items()) = %d, want 1", got)
	}
	if s.Items()[0].Title != "first" {
		t.Errorf("title = %q, want first", s.Items()[0].Title)
	}
}

func TestOpen_BackendErrorPropagates(t *testing.T) {
	want := &store.CorruptError{Path: "memory", Err: errors.New("bad json")}
	_, err := Open(context.Background(), &mockBackend{loadErr: want}, t0, items("a"))

	var corrupt *store.CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("error = %v, want *store.CorruptError", err)
	}
}

func TestOpen_UndecodableRecordIsCorrupt(t *testing.T) {
	tests := []struct {
		name string
		rd   store.RecordData
	}{
		{"bad time", store.RecordData{LastReviewed: "yesterday", EasinessFactor: 2.5}},
		{"negative streak", store.RecordData{LastReviewed: "2025-01-01T00:00:00Z", RecallStreak: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockBackend{records: map[string]store.RecordData{"a": tt.rd}}
			_, err := Open(context.Background(), backend, t0, items("a"))

			var corrupt *store.CorruptError
			if !errors.As(err, &corrupt) {
				t.Fatalf("error = %v, want *store.CorruptError", err)
			}
		})
	}
}

func TestNextDue_NoneDue(t *testing.T) {
	backend := &mockBackend{records: map[string]store.RecordData{
		"a": {LastReviewed: "2025-01-01T12:00:00Z", RecallStreak: 1, EasinessFactor: 1.3, IntervalSecs: 86400},
	}}
	s := openTestStore(t, backend, t0, items("a"))

	if rv := s.NextDue(t0.Add(time.Hour)); rv != nil {
		t.Errorf("NextDue() = %q, want nil", rv.Item.ID)
	}
}

func TestNextDue_EmptyStore(t *testing.T) {
	s := openTestStore(t, &mockBackend{}, t0, nil)
	if rv := s.NextDue(t0); rv != nil {
		t.Errorf("NextDue() = %q, want nil", rv.Item.ID)
	}
}

func TestNextDue_OnlyCandidateReturned(t *testing.T) {
	backend := &mockBackend{records: map[string]store.RecordData{
		"a": {LastReviewed: "2025-01-01T12:00:00Z", RecallStreak: 2, EasinessFactor: 1.3, IntervalSecs: 6 * 86400},
		"b": {LastReviewed: "2025-01-01T12:00:00Z", RecallStreak: 0, EasinessFactor: 1.3, IntervalSecs: 86400, Failed: true},
		"c": {LastReviewed: "2025-01-01T12:00:00Z", RecallStreak: 1, EasinessFactor: 1.3, IntervalSecs: 86400},
	}}
	s := openTestStore(t, backend, t0, items("a", "b", "c"))

	rv := s.NextDue(t0.Add(time.Hour))
	if rv == nil {
		t.Fatal("expected a due item")
	}
	if rv.Item.ID != "b" {
		t.Errorf("NextDue() = %q, want b", rv.Item.ID)
	}
}

func TestNextDueExcept_SkipsAndCounts(t *testing.T) {
	s := openTestStore(t, &mockBackend{}, t0, items("a", "b", "c"))
	skipA := func(it Item) bool { return it.ID == "a" }

	rv := s.NextDueExcept(t0, skipA)
	if rv == nil || rv.Item.ID != "b" {
		t.Fatalf("NextDueExcept() = %v, want b", rv)
	}
	if n := s.CountDue(t0, skipA); n != 2 {
		t.Errorf("CountDue(skip a) = %d, want 2", n)
	}
	if n := s.CountDue(t0, nil); n != 3 {
		t.Errorf("CountDue(nil) = %d, want 3", n)
	}

	all := func(Item) bool { return true }
	if rv := s.NextDueExcept(t0, all); rv != nil {
		t.Errorf("NextDueExcept(skip all) = %q, want nil", rv.Item.ID)
	}
	if rv := s.NextDueExcept(t0, nil); rv == nil || rv.Item.ID != "a" {
		t.Errorf("NextDueExcept(nil) = %v, want a", rv)
	}
}

func TestNextDue_HandleMutatesStore(t *testing.T) {
	s := openTestStore(t, &mockBackend{}, t0, items("a"))

	rv := s.NextDue(t0)
	if rv == nil {
		t.Fatal("expected a due item")
	}
	if err := rv.Record.Update(GradeEasy); err != nil {
		t.Fatalf("update: %v", err)
	}

	again, err := s.Lookup("a")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if again.Record.RecallStreak != 1 || again.Record.Failed {
		t.Errorf("store record = %+v, want graded state", *again.Record)
	}
}

func TestDue_ListsAllDueInOrder(t *testing.T) {
	backend := &mockBackend{records: map[string]store.RecordData{
		"b": {LastReviewed: "2025-01-01T12:00:00Z", RecallStreak: 1, EasinessFactor: 1.3, IntervalSecs: 30 * 86400},
	}}
	s := openTestStore(t, backend, t0, items("c", "b", "a"))

	due := s.Due(t0)
	var ids []string
	for _, rv := range due {
		ids = append(ids, rv.Item.ID)
	}
	if len(ids) != 2 || ids[0] != "c" || ids[1] != "a" {
		t.Errorf("Due() = %v, want [c a]", ids)
	}
}

func TestLookup_Unknown(t *testing.T) {
	s := openTestStore(t, &mockBackend{}, t0, items("a"))
	_, err := s.Lookup("missing")
	if !errors.Is(err, ErrUnknownItem) {
		t.Errorf("error = %v, want ErrUnknownItem", err)
	}
}

func TestLookup_StaleRecordHasBareItem(t *testing.T) {
	backend := &mockBackend{records: map[string]store.RecordData{
		"gone": {LastReviewed: "2024-12-01T00:00:00Z", EasinessFactor: 2.5},
	}}
	s := openTestStore(t, backend, t0, nil)

	rv, err := s.Lookup("gone")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if rv.Item != (Item{ID: "gone"}) {
		t.Errorf("item = %+v, want bare item", rv.Item)
	}
}

func TestPersist_WriteErrorPropagates(t *testing.T) {
	werr := &store.WriteError{Path: "memory", Err: errors.New("disk full")}
	s := openTestStore(t, &mockBackend{saveErr: werr}, t0, items("a"))

	err := s.Persist(context.Background())
	var got *store.WriteError
	if !errors.As(err, &got) {
		t.Fatalf("error = %v, want *store.WriteError", err)
	}
}

func TestPersistOpenRoundTrip(t *testing.T) {
	backend := store.NewFileBackend(filepath.Join(t.TempDir(), "db.json"))
	ctx := context.Background()
	its := items("a", "b", "c")

	s := openTestStore(t, backend, t0, its)
	grades := map[string][]Grade{
		"a": {GradeEasy, GradeVeryEasy, GradeOkay},
		"b": {GradeAgain},
	}
	for id, gs := range grades {
		rv, err := s.Lookup(id)
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		for _, g := range gs {
			if err := rv.Record.Update(g); err != nil {
				t.Fatalf("update: %v", err)
			}
		}
	}
	if err := s.Persist(ctx); err != nil {
		t.Fatalf("persist: %v", err)
	}

	reopened := openTestStore(t, backend, t0.Add(72*time.Hour), its)
	for _, item := range its {
		want, _ := s.Lookup(item.ID)
		got, err := reopened.Lookup(item.ID)
		if err != nil {
			t.Fatalf("lookup %q after reopen: %v", item.ID, err)
		}
		w, g := want.Record, got.Record
		if !g.LastReviewed.Equal(w.LastReviewed) || g.RecallStreak != w.RecallStreak ||
			g.EasinessFactor != w.EasinessFactor || g.Interval != w.Interval || g.Failed != w.Failed {
			t.Errorf("record %q = %+v, want %+v", item.ID, *g, *w)
		}
	}
}

func TestPersistOpenRoundTrip_NegativeEasiness(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		backend func(t *testing.T) store.Backend
	}{
		{"json", func(t *testing.T) store.Backend {
			return store.NewFileBackend(filepath.Join(dir, "db.json"))
		}},
		{"sqlite", func(t *testing.T) store.Backend {
			b, err := store.OpenSQLite(filepath.Join(dir, "db.sqlite"))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			t.Cleanup(func() { b.Close() })
			return b
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			backend := tt.backend(t)

			s := openTestStore(t, backend, t0, items("a"))
			rv, err := s.Lookup("a")
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}
			// Three blackouts drive the factor below zero; the third
			// success then multiplies the interval by it.
			for _, g := range []Grade{GradeAgain, GradeAgain, GradeAgain, GradeEasy, GradeEasy, GradeEasy} {
				if err := rv.Record.Update(g); err != nil {
					t.Fatalf("update %d: %v", g, err)
				}
			}
			want := *rv.Record
			if want.EasinessFactor >= 0 || want.Interval >= 0 {
				t.Fatalf("record = %+v, want negative easiness and interval", want)
			}
			if err := s.Persist(ctx); err != nil {
				t.Fatalf("persist: %v", err)
			}

			reopened, err := Open(ctx, backend, t0.Add(time.Hour), items("a"))
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			got, err := reopened.Lookup("a")
			if err != nil {
				t.Fatalf("lookup after reopen: %v", err)
			}
			g := *got.Record
			if !g.LastReviewed.Equal(want.LastReviewed) || g.RecallStreak != want.RecallStreak ||
				g.EasinessFactor != want.EasinessFactor || g.Interval != want.Interval || g.Failed != want.Failed {
				t.Errorf("record = %+v, want %+v", g, want)
			}
			if !g.NeedsReview(t0.Add(time.Hour)) {
				t.Error("NeedsReview() = false, want true for a due date in the past")
			}
		})
	}
}

func TestScenario_GradeThenReopen(t *testing.T) {
	backend := store.NewFileBackend(filepath.Join(t.TempDir(), "db.json"))
	ctx := context.Background()
	its := []Item{{ID: "a", Title: "A", Body: "alpha"}}

	s := openTestStore(t, backend, t0, its)
	rv := s.NextDue(t0)
	if rv == nil || rv.Item.ID != "a" {
		t.Fatalf("NextDue() = %v, want a", rv)
	}
	if err := rv.Record.Update(GradeEasy); err != nil {
		t.Fatalf("update: %v", err)
	}
	if rv.Record.RecallStreak != 1 || rv.Record.Interval != Day || rv.Record.Failed {
		t.Fatalf("record = %+v, want streak 1, 1 day, not failed", *rv.Record)
	}
	if err := s.Persist(ctx); err != nil {
		t.Fatalf("persist: %v", err)
	}

	later := openTestStore(t, backend, t0.Add(25*time.Hour), its)
	if rv := later.NextDue(t0.Add(25 * time.Hour)); rv == nil || rv.Item.ID != "a" {
		t.Errorf("after 25h NextDue() = %v, want a", rv)
	}

	soon := openTestStore(t, backend, t0.Add(time.Hour), its)
	if rv := soon.NextDue(t0.Add(time.Hour)); rv != nil {
		t.Errorf("after 1h NextDue() = %q, want nil", rv.Item.ID)
	}
}

func TestStats(t *testing.T) {
	backend := &mockBackend{records: map[string]store.RecordData{
		"a":    {LastReviewed: "2025-01-01T12:00:00Z", RecallStreak: 2, EasinessFactor: 1.3, IntervalSecs: 6 * 86400},
		"b":    {LastReviewed: "2025-01-01T12:00:00Z", RecallStreak: 0, EasinessFactor: 0.9, IntervalSecs: 86400, Failed: true},
		"gone": {LastReviewed: "2025-01-01T12:00:00Z", EasinessFactor: 2.5, Failed: true},
	}}
	s := openTestStore(t, backend, t0, items("a", "b", "c"))

	st := s.Stats(t0.Add(time.Hour))
	if st.Records != 4 || st.Known != 3 || st.Stale != 1 {
		t.Errorf("Records/Known/Stale = %d/%d/%d, want 4/3/1", st.Records, st.Known, st.Stale)
	}
	if st.Due != 2 || st.Failed != 2 {
		t.Errorf("Due/Failed = %d/%d, want 2/2", st.Due, st.Failed)
	}
	if st.LongestStreak != 2 {
		t.Errorf("LongestStreak = %d, want 2", st.LongestStreak)
	}
	wantMean := (1.3 + 0.9 + 2.5) / 3
	if d := st.MeanEasiness - wantMean; d > 1e-9 || d < -1e-9 {
		t.Errorf("MeanEasiness = %v, want %v", st.MeanEasiness, wantMean)
	}
	if !st.NextDueAt.Equal(t0.Add(6 * Day)) {
		t.Errorf("NextDueAt = %v, want %v", st.NextDueAt, t0.Add(6*Day))
	}
}
