// Package review selects cards for a study session from a snapshot of
// the card collection. All functions are pure and preserve input order;
// callers needing priority ordering sort the result themselves.
package review

import (
	"time"

	"github.com/mnemohq/mnemo/internal/domain"
)

// difficultEase is the ease-factor threshold below which a card counts
// as difficult.
const difficultEase = 2.0

// Due returns the cards that are ready for review at now: cards that
// have never been reviewed, and cards whose next review time has
// arrived or passed. The boundary is inclusive.
func Due(cards []domain.Card, now time.Time) []domain.Card {
	var due []domain.Card
	for _, c := range cards {
		if isDue(c, now) {
			due = append(due, c)
		}
	}
	return due
}

// Difficult returns the due cards that the learner struggles with: a
// history entry of "unknown" or "difficult", or an ease factor below
// 2.0. A struggling card that is not currently due is excluded.
func Difficult(cards []domain.Card, now time.Time) []domain.Card {
	var out []domain.Card
	for _, c := range cards {
		if isDifficult(c) && isDue(c, now) {
			out = append(out, c)
		}
	}
	return out
}

// Merge combines two selections into one, keeping first-seen order and
// dropping later entries whose card ID was already included. Identity
// is the card ID, not struct equality, since two distinct cards can
// carry identical field values.
func Merge(a, b []domain.Card) []domain.Card {
	seen := make(map[string]bool, len(a)+len(b))
	var merged []domain.Card
	for _, c := range append(append([]domain.Card{}, a...), b...) {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		merged = append(merged, c)
	}
	return merged
}

func isDue(c domain.Card, now time.Time) bool {
	if c.State == nil {
		return true
	}
	return !c.State.NextReview.After(now)
}

func isDifficult(c domain.Card) bool {
	for _, r := range c.Reviews {
		if r.Response == domain.ResponseUnknown || r.Response == domain.ResponseDifficult {
			return true
		}
	}
	return c.State != nil && c.State.EaseFactor < difficultEase
}
