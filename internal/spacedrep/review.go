package spacedrep

import (
	"fmt"
	"math"
	"time"
)

// Record holds the spaced repetition state for a single item.
type Record struct {
	// LastReviewed is the scheduling anchor. It is set when the record is
	// created and is not moved by later reviews, so the due date is always
	// measured from the first time the item was seen.
	LastReviewed   time.Time
	RecallStreak   int
	EasinessFactor float64
	Interval       time.Duration
	Failed         bool
}

// NewRecord returns the state of an item seen for the first time at now.
// New items start out failed so they are shown right away.
func NewRecord(now time.Time) *Record {
	return &Record{
		LastReviewed:   now,
		RecallStreak:   0,
		EasinessFactor: DefaultEasinessFactor,
		Interval:       0,
		Failed:         true,
	}
}

// Update applies a grade using the SM-2 derived schedule.
func (r *Record) Update(grade Grade) error {
	if !grade.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidGrade, int(grade))
	}

	if grade.IsSuccess() {
		switch r.RecallStreak {
		case 0:
			r.Interval = FirstInterval
		case 1:
			r.Interval = SecondInterval
		default:
			days := float64(r.Interval / Day)
			r.Interval = time.Duration(math.Round(days*r.EasinessFactor)) * Day
		}
		r.RecallStreak++
		r.Failed = false
	} else {
		r.RecallStreak = 0
		r.Interval = FailedInterval
		r.Failed = true
	}

	r.EasinessFactor = nextEasiness(r.EasinessFactor, grade)
	return nil
}

// nextEasiness returns the adjusted easiness factor, capped at EasinessCap.
func nextEasiness(ef float64, grade Grade) float64 {
	q := float64(MaxGrade - grade)
	return math.Min(ef+(0.1-q*(0.08+q*0.02)), EasinessCap)
}

// DueAt returns when the item becomes due by interval alone.
func (r *Record) DueAt() time.Time {
	return r.LastReviewed.Add(r.Interval)
}

// NeedsReview reports whether the item must be shown at now: either its
// interval has elapsed or its last recall failed.
func (r *Record) NeedsReview(now time.Time) bool {
	return !r.DueAt().After(now) || r.Failed
}

// IntervalDays returns the interval in whole days.
func (r *Record) IntervalDays() int {
	return int(r.Interval / Day)
}
