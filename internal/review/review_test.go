package review

import (
	"testing"
	"time"

	"github.com/mnemohq/mnemo/internal/domain"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func card(id string, state *domain.SchedulingState, reviews ...domain.ReviewRecord) domain.Card {
	return domain.Card{ID: id, Front: "front " + id, Back: "back " + id, State: state, Reviews: reviews}
}

func stateDue(ease float64, at time.Time) *domain.SchedulingState {
	return &domain.SchedulingState{
		EaseFactor:   ease,
		Interval:     1,
		Repetitions:  1,
		NextReview:   at,
		LastReviewed: at.AddDate(0, 0, -1),
	}
}

func TestDue(t *testing.T) {
	t.Run("empty collection", func(t *testing.T) {
		if got := Due(nil, now); len(got) != 0 {
			t.Errorf("Expected no due cards, but got %d", len(got))
		}
	})

	t.Run("never-reviewed cards are due", func(t *testing.T) {
		got := Due([]domain.Card{card("a", nil)}, now)
		if len(got) != 1 {
			t.Fatalf("Expected 1 due card, but got %d", len(got))
		}
	})

	t.Run("boundary is inclusive", func(t *testing.T) {
		got := Due([]domain.Card{card("a", stateDue(2.5, now))}, now)
		if len(got) != 1 {
			t.Errorf("Expected a card due exactly now to be included, but got %d cards", len(got))
		}
	})

	t.Run("future cards are excluded and order is preserved", func(t *testing.T) {
		cards := []domain.Card{
			card("z", stateDue(2.5, now.AddDate(0, 0, -3))),
			card("future", stateDue(2.5, now.AddDate(0, 0, 2))),
			card("a", nil),
		}
		got := Due(cards, now)
		if len(got) != 2 {
			t.Fatalf("Expected 2 due cards, but got %d", len(got))
		}
		if got[0].ID != "z" || got[1].ID != "a" {
			t.Errorf("Expected input order to be preserved, but got %q, %q", got[0].ID, got[1].ID)
		}
	})
}

func TestDifficult(t *testing.T) {
	poorRecord := domain.ReviewRecord{Timestamp: now.AddDate(0, 0, -5), Response: domain.ResponseUnknown}

	t.Run("low ease and due", func(t *testing.T) {
		got := Difficult([]domain.Card{card("a", stateDue(1.9, now.AddDate(0, 0, -1)))}, now)
		if len(got) != 1 {
			t.Errorf("Expected low-ease due card to qualify, but got %d cards", len(got))
		}
	})

	t.Run("ease at threshold does not qualify", func(t *testing.T) {
		got := Difficult([]domain.Card{card("a", stateDue(2.0, now.AddDate(0, 0, -1)))}, now)
		if len(got) != 0 {
			t.Errorf("Expected ease factor 2.0 to not count as difficult, but got %d cards", len(got))
		}
	})

	t.Run("poor history and due", func(t *testing.T) {
		got := Difficult([]domain.Card{card("a", stateDue(2.5, now.AddDate(0, 0, -1)), poorRecord)}, now)
		if len(got) != 1 {
			t.Errorf("Expected card with an unknown response to qualify, but got %d cards", len(got))
		}
	})

	t.Run("difficult but not due is excluded", func(t *testing.T) {
		got := Difficult([]domain.Card{card("a", stateDue(1.5, now.AddDate(0, 0, 3)), poorRecord)}, now)
		if len(got) != 0 {
			t.Errorf("Expected a not-yet-due card to be excluded, but got %d cards", len(got))
		}
	})

	t.Run("history of know responses only does not qualify", func(t *testing.T) {
		good := domain.ReviewRecord{Timestamp: now.AddDate(0, 0, -2), Response: domain.ResponseKnow}
		got := Difficult([]domain.Card{card("a", stateDue(2.5, now.AddDate(0, 0, -1)), good)}, now)
		if len(got) != 0 {
			t.Errorf("Expected a well-known card to be excluded, but got %d cards", len(got))
		}
	})
}

func TestMerge(t *testing.T) {
	t.Run("dedupes by card ID", func(t *testing.T) {
		shared := card("dup", stateDue(1.8, now.AddDate(0, 0, -1)))
		a := []domain.Card{card("a", nil), shared}
		b := []domain.Card{shared, card("b", nil)}

		got := Merge(a, b)
		if len(got) != 3 {
			t.Fatalf("Expected 3 merged cards, but got %d", len(got))
		}
		if got[0].ID != "a" || got[1].ID != "dup" || got[2].ID != "b" {
			t.Errorf("Expected order a, dup, b, but got %q, %q, %q", got[0].ID, got[1].ID, got[2].ID)
		}
	})

	t.Run("identical fields but distinct IDs are kept", func(t *testing.T) {
		a := domain.Card{ID: "one", Front: "same", Back: "same"}
		b := domain.Card{ID: "two", Front: "same", Back: "same"}
		got := Merge([]domain.Card{a}, []domain.Card{b})
		if len(got) != 2 {
			t.Errorf("Expected structurally equal cards with distinct IDs to both survive, but got %d", len(got))
		}
	})
}
