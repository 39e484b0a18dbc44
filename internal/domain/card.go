package domain

import "time"

// Card represents a single front-back learning item together with its
// scheduling memory and review history. The engine packages (sm2, review,
// stats) only ever read cards; replacement SchedulingState values are
// returned to the caller, which owns the merge and persist step.
type Card struct {
	// ID is a stable content-derived identifier (see internal/cardid).
	ID    string
	Front string
	Back  string

	// State is nil for a card that has never been reviewed. Such cards
	// are treated as immediately due.
	State *SchedulingState

	// Reviews is the append-only review history, oldest first. The
	// engine reads it; writing entries is the caller's responsibility.
	Reviews []ReviewRecord
}

// SchedulingState is the SM-2 memory of one card. It is created and
// replaced wholesale by sm2.ComputeNext and never partially mutated.
type SchedulingState struct {
	// EaseFactor controls interval growth; never below sm2.MinEase (1.3).
	EaseFactor float64
	// Interval is the number of days until the next review, at least 1.
	Interval int
	// Repetitions counts consecutive successful reviews since the last
	// failure.
	Repetitions int
	NextReview   time.Time
	LastReviewed time.Time
}

// ReviewRecord is one historical review event for a card.
type ReviewRecord struct {
	Timestamp time.Time
	Response  ResponseCategory
	// Quality is the raw 0-5 score when the UI collected one; nil when
	// only the coarse category was recorded.
	Quality *int
}
