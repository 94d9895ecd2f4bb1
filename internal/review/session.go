// Package review drives a review session over a spacedrep.Store: take the
// next due card, apply the grade, persist, repeat.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matze/zk-spaced/internal/spacedrep"
)

// Session walks the due cards of a store. Due-ness is evaluated against the
// time the session started. A card graded below okay stays due and comes
// back immediately.
type Session struct {
	ID      string
	Started time.Time

	store   *spacedrep.Store
	now     time.Time
	log     *zap.Logger
	skipped map[string]bool
	current *spacedrep.Review

	reviewed int
	perGrade [spacedrep.MaxGrade + 1]int
}

// New starts a session at now. A nil logger discards output.
func New(store *spacedrep.Store, now time.Time, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		ID:      uuid.New().String(),
		Started: now,
		store:   store,
		now:     now,
		skipped: make(map[string]bool),
	}
	s.log = log.With(zap.String("session_id", s.ID))
	s.advance()

	s.log.Info("session started",
		zap.String("location", store.Location()),
		zap.Int("items", len(store.Items())),
		zap.Int("due", s.Remaining()),
	)
	return s
}

// Current returns the card under review, or nil once nothing is due.
func (s *Session) Current() *spacedrep.Review {
	return s.current
}

// Done reports whether the session has run out of due cards.
func (s *Session) Done() bool {
	return s.current == nil
}

// Grade applies g to the current card and persists the whole store before
// moving on. A persist failure is returned as is and ends the session's
// usefulness: the in-memory state is ahead of the snapshot.
func (s *Session) Grade(ctx context.Context, g spacedrep.Grade) error {
	if s.current == nil {
		return fmt.Errorf("no card under review")
	}
	if err := s.current.Record.Update(g); err != nil {
		return err
	}

	id := s.current.Item.ID
	if err := s.store.Persist(ctx); err != nil {
		s.log.Error("persist failed", zap.String("id", id), zap.Error(err))
		return err
	}

	s.reviewed++
	s.perGrade[g]++
	s.log.Info("card graded",
		zap.String("id", id),
		zap.Stringer("grade", g),
		zap.Int("recall_streak", s.current.Record.RecallStreak),
		zap.Float64("easiness_factor", s.current.Record.EasinessFactor),
		zap.Int("interval_days", s.current.Record.IntervalDays()),
	)

	s.advance()
	return nil
}

// Skip moves past the current card without grading it. The card is not
// offered again in this session.
func (s *Session) Skip() {
	if s.current == nil {
		return
	}
	s.skipped[s.current.Item.ID] = true
	s.log.Debug("card skipped", zap.String("id", s.current.Item.ID))
	s.advance()
}

// Remaining counts due cards that have not been skipped, including the
// current one.
func (s *Session) Remaining() int {
	return s.store.CountDue(s.now, s.isSkipped)
}

func (s *Session) isSkipped(item spacedrep.Item) bool {
	return s.skipped[item.ID]
}

func (s *Session) advance() {
	s.current = s.store.NextDueExcept(s.now, s.isSkipped)
}
