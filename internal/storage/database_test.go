package storage

import (
	"testing"
	"time"

	"github.com/mnemohq/mnemo/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() returned an unexpected error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCardRoundTrip(t *testing.T) {
	store := openTestStore(t)

	sourceID, err := store.InsertSource("decks", "local")
	if err != nil {
		t.Fatalf("InsertSource() returned an unexpected error: %v", err)
	}

	card := domain.Card{ID: "abc", Front: "front", Back: "back"}
	if err := store.InsertCard(card, sourceID); err != nil {
		t.Fatalf("InsertCard() returned an unexpected error: %v", err)
	}

	got, err := store.FindCard("abc")
	if err != nil {
		t.Fatalf("FindCard() returned an unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("Expected to find the inserted card, but got nil")
	}
	if got.State != nil {
		t.Errorf("Expected a fresh card to have no scheduling state, but got %+v", got.State)
	}

	missing, err := store.FindCard("nope")
	if err != nil {
		t.Fatalf("FindCard() returned an unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for an unknown card, but got %+v", missing)
	}
}

func TestReplaceStateAndHistory(t *testing.T) {
	store := openTestStore(t)

	sourceID, _ := store.InsertSource("decks", "local")
	if err := store.InsertCard(domain.Card{ID: "abc", Front: "f", Back: "b"}, sourceID); err != nil {
		t.Fatalf("InsertCard() returned an unexpected error: %v", err)
	}

	reviewed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	state := domain.SchedulingState{
		EaseFactor:   2.6,
		Interval:     6,
		Repetitions:  2,
		NextReview:   reviewed.AddDate(0, 0, 6),
		LastReviewed: reviewed,
	}
	if err := store.ReplaceState("abc", state); err != nil {
		t.Fatalf("ReplaceState() returned an unexpected error: %v", err)
	}

	quality := 5
	rec := domain.ReviewRecord{Timestamp: reviewed, Response: domain.ResponseKnow, Quality: &quality}
	if err := store.AppendReview("abc", rec); err != nil {
		t.Fatalf("AppendReview() returned an unexpected error: %v", err)
	}

	got, err := store.FindCard("abc")
	if err != nil {
		t.Fatalf("FindCard() returned an unexpected error: %v", err)
	}
	if got.State == nil {
		t.Fatal("Expected scheduling state after ReplaceState, but got nil")
	}
	if *got.State != state {
		t.Errorf("Expected state %+v, but got %+v", state, *got.State)
	}
	if len(got.Reviews) != 1 {
		t.Fatalf("Expected 1 review record, but got %d", len(got.Reviews))
	}
	if got.Reviews[0].Response != domain.ResponseKnow {
		t.Errorf("Expected response %q, but got %q", domain.ResponseKnow, got.Reviews[0].Response)
	}
	if got.Reviews[0].Quality == nil || *got.Reviews[0].Quality != 5 {
		t.Errorf("Expected quality 5, but got %v", got.Reviews[0].Quality)
	}
	if !got.Reviews[0].Timestamp.Equal(reviewed) {
		t.Errorf("Expected review timestamp %v, but got %v", reviewed, got.Reviews[0].Timestamp)
	}
}

func TestAllCardsHydratesHistory(t *testing.T) {
	store := openTestStore(t)

	sourceID, _ := store.InsertSource("decks", "local")
	for _, id := range []string{"one", "two"} {
		if err := store.InsertCard(domain.Card{ID: id, Front: id, Back: id}, sourceID); err != nil {
			t.Fatalf("InsertCard() returned an unexpected error: %v", err)
		}
	}

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.AppendReview("two", domain.ReviewRecord{Timestamp: at, Response: domain.ResponseUnknown})
	store.AppendReview("two", domain.ReviewRecord{Timestamp: at.AddDate(0, 0, 1), Response: domain.ResponseKnow})

	cards, err := store.AllCards()
	if err != nil {
		t.Fatalf("AllCards() returned an unexpected error: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("Expected 2 cards, but got %d", len(cards))
	}
	if cards[0].ID != "one" || cards[1].ID != "two" {
		t.Errorf("Expected insertion order one, two, but got %q, %q", cards[0].ID, cards[1].ID)
	}
	if len(cards[1].Reviews) != 2 {
		t.Fatalf("Expected 2 review records on card two, but got %d", len(cards[1].Reviews))
	}
	if cards[1].Reviews[0].Response != domain.ResponseUnknown {
		t.Errorf("Expected oldest record first, but got %q", cards[1].Reviews[0].Response)
	}
}

func TestDeleteCardRemovesHistory(t *testing.T) {
	store := openTestStore(t)

	sourceID, _ := store.InsertSource("decks", "local")
	store.InsertCard(domain.Card{ID: "gone", Front: "f", Back: "b"}, sourceID)
	store.AppendReview("gone", domain.ReviewRecord{Timestamp: time.Now(), Response: domain.ResponseKnow})

	if err := store.DeleteCard("gone"); err != nil {
		t.Fatalf("DeleteCard() returned an unexpected error: %v", err)
	}

	got, err := store.FindCard("gone")
	if err != nil {
		t.Fatalf("FindCard() returned an unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("Expected the card to be deleted, but got %+v", got)
	}

	ids, err := store.CardIDsBySource(sourceID)
	if err != nil {
		t.Fatalf("CardIDsBySource() returned an unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected no cards left for the source, but got %v", ids)
	}
}
