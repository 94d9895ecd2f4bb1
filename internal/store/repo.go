package store

import (
	"context"
	"time"
)

// RecordData is the persisted shape of one item's scheduling state.
type RecordData struct {
	LastReviewed   string  `json:"last_reviewed"`
	RecallStreak   int     `json:"recall_streak"`
	EasinessFactor float64 `json:"easiness_factor"`
	IntervalSecs   int64   `json:"interval"`
	Failed         bool    `json:"failed"`
}

// TimeLayout is the layout used for LastReviewed.
const TimeLayout = time.RFC3339Nano

// Backend persists the full identifier -> RecordData mapping.
// Every Save replaces the previous snapshot entirely.
type Backend interface {
	// Load returns the stored mapping, or nil if no snapshot exists yet.
	// A snapshot that exists but cannot be decoded yields a *CorruptError.
	Load(ctx context.Context) (map[string]RecordData, error)

	// Save overwrites the snapshot with records. Failures yield a *WriteError.
	Save(ctx context.Context, records map[string]RecordData) error

	// Reset removes the snapshot.
	Reset(ctx context.Context) error

	// Location describes where the snapshot lives, for messages and logs.
	Location() string

	Close() error
}
