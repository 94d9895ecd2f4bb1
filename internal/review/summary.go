package review

import (
	"time"

	"github.com/matze/zk-spaced/internal/spacedrep"
)

// Summary is the outcome of a session.
type Summary struct {
	SessionID string
	Duration  time.Duration
	Reviewed  int
	Skipped   int
	Remaining int
	PerGrade  [spacedrep.MaxGrade + 1]int
}

// Recalled counts grades of okay or better.
func (s *Summary) Recalled() int {
	n := 0
	for g, c := range s.PerGrade {
		if spacedrep.Grade(g).IsSuccess() {
			n += c
		}
	}
	return n
}

// Summary reports the session so far. Duration is measured with the wall
// clock at the time of the call.
func (s *Session) Summary() *Summary {
	return &Summary{
		SessionID: s.ID,
		Duration:  time.Since(s.Started),
		Reviewed:  s.reviewed,
		Skipped:   len(s.skipped),
		Remaining: s.Remaining(),
		PerGrade:  s.perGrade,
	}
}
