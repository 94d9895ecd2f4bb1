package spacedrep

import (
	"fmt"
	"time"

	"github.com/matze/zk-spaced/internal/store"
)

// toRecordData converts a Record to its persisted shape.
func toRecordData(r *Record) store.RecordData {
	return store.RecordData{
		LastReviewed:   r.LastReviewed.Format(store.TimeLayout),
		RecallStreak:   r.RecallStreak,
		EasinessFactor: r.EasinessFactor,
		IntervalSecs:   int64(r.Interval / time.Second),
		Failed:         r.Failed,
	}
}

// fromRecordData converts a persisted record back into a Record.
// Interval and EasinessFactor are taken as stored: the easiness factor has
// no floor, so both can go negative.
func fromRecordData(rd store.RecordData) (*Record, error) {
	lastReviewed, err := time.Parse(store.TimeLayout, rd.LastReviewed)
	if err != nil {
		return nil, fmt.Errorf("last_reviewed: %w", err)
	}
	if rd.RecallStreak < 0 {
		return nil, fmt.Errorf("recall_streak is negative: %d", rd.RecallStreak)
	}
	return &Record{
		LastReviewed:   lastReviewed,
		RecallStreak:   rd.RecallStreak,
		EasinessFactor: rd.EasinessFactor,
		Interval:       time.Duration(rd.IntervalSecs) * time.Second,
		Failed:         rd.Failed,
	}, nil
}

// SnapshotData exports every record, including records of items that were
// not supplied this session.
func (s *Store) SnapshotData() map[string]store.RecordData {
	data := make(map[string]store.RecordData, len(s.records))
	for id, r := range s.records {
		data[id] = toRecordData(r)
	}
	return data
}

// loadSnapshot replaces the records with the decoded snapshot.
func (s *Store) loadSnapshot(data map[string]store.RecordData) error {
	records := make(map[string]*Record, len(data))
	for id, rd := range data {
		r, err := fromRecordData(rd)
		if err != nil {
			return fmt.Errorf("record %q: %w", id, err)
		}
		records[id] = r
	}
	s.records = records
	return nil
}
