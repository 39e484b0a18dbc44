// Package stats aggregates scheduling state across a card collection
// into summary counters and a day-bucketed review forecast.
package stats

import (
	"math"
	"time"

	"github.com/mnemohq/mnemo/internal/domain"
	"github.com/mnemohq/mnemo/internal/review"
	"github.com/mnemohq/mnemo/internal/sm2"
)

// Mastery thresholds: a card is mastered once its ease factor has grown
// past the default and its interval past a week.
const (
	masteredEase     = 2.5
	masteredInterval = 7
)

// Summary holds collection-wide study counters.
type Summary struct {
	Total             int     `json:"total"`
	Reviewed          int     `json:"reviewed"`
	Due               int     `json:"due"`
	Difficult         int     `json:"difficult"`
	Mastered          int     `json:"mastered"`
	MasteryPercentage int     `json:"mastery_percentage"`
	AvgEaseFactor     float64 `json:"avg_ease_factor"`
}

// Study computes a Summary over the given cards at the given time.
func Study(cards []domain.Card, now time.Time) Summary {
	s := Summary{
		Total:         len(cards),
		Due:           len(review.Due(cards, now)),
		Difficult:     len(review.Difficult(cards, now)),
		AvgEaseFactor: sm2.DefaultEase,
	}

	var easeSum float64
	var withState int
	for _, c := range cards {
		if c.State == nil {
			continue
		}
		withState++
		easeSum += c.State.EaseFactor
		if !c.State.LastReviewed.IsZero() {
			s.Reviewed++
		}
		if c.State.EaseFactor > masteredEase && c.State.Interval > masteredInterval {
			s.Mastered++
		}
	}

	if s.Total > 0 {
		s.MasteryPercentage = int(math.Round(float64(s.Mastered) / float64(s.Total) * 100))
	}
	if withState > 0 {
		s.AvgEaseFactor = math.Round(easeSum/float64(withState)*100) / 100
	}
	return s
}

// UpcomingReviews buckets the collection's next-review dates into one
// entry per calendar day, from now through now+days-1 inclusive. Dates
// are compared by UTC calendar day, and days with no reviews are kept
// as explicit zero entries. Keys use the YYYY-MM-DD form.
func UpcomingReviews(cards []domain.Card, days int, now time.Time) map[string]int {
	forecast := make(map[string]int, days)
	start := now.UTC()
	for i := 0; i < days; i++ {
		forecast[start.AddDate(0, 0, i).Format(time.DateOnly)] = 0
	}
	for _, c := range cards {
		if c.State == nil {
			continue
		}
		day := c.State.NextReview.UTC().Format(time.DateOnly)
		if _, ok := forecast[day]; ok {
			forecast[day]++
		}
	}
	return forecast
}
