package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/matze/zk-spaced/internal/spacedrep"
	"github.com/matze/zk-spaced/internal/store"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

type memBackend struct {
	records map[string]store.RecordData
	saveErr error
	saves   int
}

func (m *memBackend) Load(context.Context) (map[string]store.RecordData, error) {
	return m.records, nil
}

func (m *memBackend) Save(_ context.Context, records map[string]store.RecordData) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.records = records
	return nil
}

func (m *memBackend) Reset(context.Context) error { m.records = nil; return nil }
func (m *memBackend) Location() string            { return "memory" }
func (m *memBackend) Close() error                { return nil }

func newTestSession(t *testing.T, backend *memBackend, ids ...string) (*Session, *observer.ObservedLogs) {
	t.Helper()
	items := make([]spacedrep.Item, len(ids))
	for i, id := range ids {
		items[i] = spacedrep.Item{ID: id, Title: "Title " + id, Body: "Body " + id}
	}
	st, err := spacedrep.Open(context.Background(), backend, t0, items)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	return New(st, t0, zap.New(core)), logs
}

func TestSession_GradeAdvancesAndPersists(t *testing.T) {
	backend := &memBackend{}
	s, logs := newTestSession(t, backend, "a", "b")
	ctx := context.Background()

	require.NotNil(t, s.Current())
	assert.Equal(t, "a", s.Current().Item.ID)
	assert.Equal(t, 2, s.Remaining())

	require.NoError(t, s.Grade(ctx, spacedrep.GradeEasy))
	assert.Equal(t, 1, backend.saves)
	require.Contains(t, backend.records, "a")
	assert.False(t, backend.records["a"].Failed)

	require.NotNil(t, s.Current())
	assert.Equal(t, "b", s.Current().Item.ID)

	// A failed recall keeps the card due within the same session.
	require.NoError(t, s.Grade(ctx, spacedrep.GradeVeryHard))
	require.NotNil(t, s.Current())
	assert.Equal(t, "b", s.Current().Item.ID)
	assert.True(t, backend.records["b"].Failed)

	require.NoError(t, s.Grade(ctx, spacedrep.GradeVeryEasy))
	assert.True(t, s.Done())
	assert.Nil(t, s.Current())
	assert.Equal(t, 3, backend.saves)

	sum := s.Summary()
	assert.Equal(t, s.ID, sum.SessionID)
	assert.Equal(t, 3, sum.Reviewed)
	assert.Equal(t, 0, sum.Remaining)
	assert.Equal(t, 1, sum.PerGrade[spacedrep.GradeEasy])
	assert.Equal(t, 1, sum.PerGrade[spacedrep.GradeVeryHard])
	assert.Equal(t, 1, sum.PerGrade[spacedrep.GradeVeryEasy])
	assert.Equal(t, 2, sum.Recalled())

	assert.Equal(t, 3, logs.FilterMessage("card graded").Len())
	for _, e := range logs.FilterMessage("card graded").All() {
		assert.Equal(t, s.ID, e.ContextMap()["session_id"])
	}
}

func TestSession_NothingDue(t *testing.T) {
	backend := &memBackend{records: map[string]store.RecordData{
		"a": {
			LastReviewed:   t0.Format(store.TimeLayout),
			RecallStreak:   1,
			EasinessFactor: 1.3,
			IntervalSecs:   int64(6 * spacedrep.Day / time.Second),
		},
	}}
	s, _ := newTestSession(t, backend, "a")

	assert.True(t, s.Done())
	assert.Equal(t, 0, s.Remaining())
	assert.Error(t, s.Grade(context.Background(), spacedrep.GradeOkay))
	assert.Equal(t, 0, backend.saves)
}

func TestSession_Skip(t *testing.T) {
	backend := &memBackend{}
	s, _ := newTestSession(t, backend, "a", "b")

	s.Skip()
	require.NotNil(t, s.Current())
	assert.Equal(t, "b", s.Current().Item.ID)
	assert.Equal(t, 1, s.Remaining())

	s.Skip()
	assert.True(t, s.Done())
	s.Skip()

	sum := s.Summary()
	assert.Equal(t, 2, sum.Skipped)
	assert.Equal(t, 0, sum.Reviewed)
	assert.Equal(t, 0, backend.saves)
}

func TestSession_InvalidGrade(t *testing.T) {
	backend := &memBackend{}
	s, _ := newTestSession(t, backend, "a")

	err := s.Grade(context.Background(), spacedrep.Grade(9))
	require.ErrorIs(t, err, spacedrep.ErrInvalidGrade)
	assert.Equal(t, 0, backend.saves)
	assert.Equal(t, "a", s.Current().Item.ID)
}

func TestSession_PersistFailure(t *testing.T) {
	writeErr := &store.WriteError{Path: "memory", Err: errors.New("disk full")}
	backend := &memBackend{saveErr: writeErr}
	s, logs := newTestSession(t, backend, "a")

	err := s.Grade(context.Background(), spacedrep.GradeOkay)
	var we *store.WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, 0, s.Summary().Reviewed)
	assert.Equal(t, 1, logs.FilterMessage("persist failed").Len())
}

func TestSession_CurrentMatchesStoreSelection(t *testing.T) {
	s, _ := newTestSession(t, &memBackend{}, "a", "b", "c")
	s.Skip()

	want := s.store.NextDueExcept(t0, func(it spacedrep.Item) bool { return it.ID == "a" })
	require.NotNil(t, want)
	require.NotNil(t, s.Current())
	assert.Equal(t, want.Item, s.Current().Item)
	assert.Same(t, want.Record, s.Current().Record)
	assert.Equal(t, s.store.CountDue(t0, nil)-1, s.Remaining())
}
