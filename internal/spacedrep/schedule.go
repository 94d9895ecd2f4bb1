package spacedrep

import "time"

// Day is the unit every interval is expressed in.
const Day = 24 * time.Hour

// FirstInterval and SecondInterval are the fixed intervals assigned after
// the first and second consecutive successful recall.
const (
	FirstInterval  = 1 * Day
	SecondInterval = 6 * Day
)

// FailedInterval is assigned whenever a recall fails.
const FailedInterval = 1 * Day

// DefaultEasinessFactor is the easiness factor of a freshly seen item.
const DefaultEasinessFactor = 2.5

// EasinessCap bounds the easiness factor after every update. The factor is
// capped from above: it can never grow past this value.
const EasinessCap = 1.3
