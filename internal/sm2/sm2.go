// Package sm2 implements the SM-2 spaced-repetition update rule.
//
// ComputeNext is a pure function: it never performs I/O, never mutates
// its inputs, and the same (prior, quality, now) triple always produces
// the same replacement state. The evaluation time is passed in so that
// callers and tests control it.
package sm2

import (
	"math"
	"time"

	"github.com/mnemohq/mnemo/internal/domain"
)

const (
	// DefaultEase is the ease factor assigned to a card that has never
	// been reviewed.
	DefaultEase = 2.5
	// MinEase is the floor below which the ease factor never drops.
	MinEase = 1.3

	// A quality of 3 or better counts as a successful recall.
	passThreshold = 3
)

// ComputeNext evaluates one review and returns the full replacement
// scheduling state for the card.
//
// prior may be nil for a never-reviewed card, in which case the defaults
// {ease 2.5, interval 1, repetitions 0} are substituted. quality is
// rounded to the nearest integer and clamped to [0, 5]; out-of-range or
// fractional inputs are normalized, never rejected. The next review is
// scheduled interval calendar days after now, computed in UTC so that
// the result does not depend on the host time zone.
func ComputeNext(prior *domain.SchedulingState, quality float64, now time.Time) domain.SchedulingState {
	now = now.UTC()
	q := clampQuality(quality)

	cur := domain.SchedulingState{
		EaseFactor:   DefaultEase,
		Interval:     1,
		Repetitions:  0,
		NextReview:   now,
		LastReviewed: now,
	}
	if prior != nil {
		cur = *prior
	}

	var (
		ease     float64
		interval int
		reps     int
	)
	if q >= passThreshold {
		reps = cur.Repetitions + 1
		switch reps {
		case 1:
			interval = 1
		case 2:
			interval = 6
		default:
			// Third and later successes grow by the prior ease factor.
			interval = int(math.Round(float64(cur.Interval) * cur.EaseFactor))
		}
		miss := float64(5 - q)
		ease = cur.EaseFactor + (0.1 - miss*(0.08+miss*0.02))
	} else {
		reps = 0
		interval = 1
		ease = cur.EaseFactor - 0.2
	}
	if ease < MinEase {
		ease = MinEase
	}

	return domain.SchedulingState{
		EaseFactor:   roundEase(ease),
		Interval:     interval,
		Repetitions:  reps,
		NextReview:   now.AddDate(0, 0, interval),
		LastReviewed: now,
	}
}

// ResponseToQuality maps a coarse response category onto its fixed
// quality score. Unrecognized categories degrade to the failing score
// rather than erroring; a scheduler must not abort mid-session.
func ResponseToQuality(r domain.ResponseCategory) int {
	switch r {
	case domain.ResponseKnow:
		return 5
	case domain.ResponseDifficult:
		return 3
	default:
		return 1
	}
}

// clampQuality normalizes a raw quality input: round to the nearest
// integer, then clamp into [0, 5].
func clampQuality(q float64) int {
	if math.IsNaN(q) {
		return 0
	}
	n := int(math.Round(q))
	if n < 0 {
		return 0
	}
	if n > 5 {
		return 5
	}
	return n
}

// roundEase rounds an ease factor to two decimal places for display
// stability.
func roundEase(e float64) float64 {
	return math.Round(e*100) / 100
}
