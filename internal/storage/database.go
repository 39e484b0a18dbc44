// Package storage persists cards, scheduling state, and review history
// in SQLite. It is the caller-side store for the scheduling engine: the
// engine computes replacement states and this package writes them back.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mnemohq/mnemo/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// Store wraps the SQL database connection.
type Store struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up
// to date.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{conn: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// InsertCard inserts a new card with no scheduling state. A card without
// state is treated as immediately due by the engine, so no initial
// scheduling values are written.
func (s *Store) InsertCard(card domain.Card, sourceID int64) error {
	_, err := s.conn.Exec(`
		INSERT INTO cards (id, front, back, source_id)
		VALUES (?, ?, ?, ?)
	`, card.ID, card.Front, card.Back, sourceID)
	if err != nil {
		return fmt.Errorf("failed to insert card %s: %w", card.ID, err)
	}
	return nil
}

// FindCard retrieves a card by ID, with its scheduling state and review
// history hydrated. It returns nil when the card does not exist.
func (s *Store) FindCard(id string) (*domain.Card, error) {
	row := s.conn.QueryRow(`
		SELECT id, front, back, ease_factor, interval_days, repetitions, next_review, last_reviewed
		FROM cards WHERE id = ?
	`, id)

	card, err := scanCard(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Card not found
		}
		return nil, fmt.Errorf("failed to find card %s: %w", id, err)
	}

	reviews, err := s.reviewsFor(id)
	if err != nil {
		return nil, err
	}
	card.Reviews = reviews
	return &card, nil
}

// AllCards returns every stored card with scheduling state and review
// history attached, in insertion order.
func (s *Store) AllCards() ([]domain.Card, error) {
	rows, err := s.conn.Query(`
		SELECT id, front, back, ease_factor, interval_days, repetitions, next_review, last_reviewed
		FROM cards ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	index := make(map[string]int)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		index[card.ID] = len(cards)
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	logRows, err := s.conn.Query(`
		SELECT card_id, reviewed_at, response, quality
		FROM reviews ORDER BY reviewed_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer logRows.Close()

	for logRows.Next() {
		var (
			cardID  string
			at      int64
			resp    string
			quality sql.NullInt64
		)
		if err := logRows.Scan(&cardID, &at, &resp, &quality); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		i, ok := index[cardID]
		if !ok {
			continue
		}
		cards[i].Reviews = append(cards[i].Reviews, toRecord(at, resp, quality))
	}
	if err := logRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return cards, nil
}

// ReplaceState overwrites the card's scheduling state with the
// replacement computed by the engine.
func (s *Store) ReplaceState(cardID string, state domain.SchedulingState) error {
	_, err := s.conn.Exec(`
		UPDATE cards
		SET ease_factor = ?, interval_days = ?, repetitions = ?, next_review = ?, last_reviewed = ?
		WHERE id = ?
	`,
		state.EaseFactor,
		state.Interval,
		state.Repetitions,
		state.NextReview.UnixMilli(),
		state.LastReviewed.UnixMilli(),
		cardID,
	)
	if err != nil {
		return fmt.Errorf("failed to replace state for card %s: %w", cardID, err)
	}
	return nil
}

// AppendReview adds one entry to the card's review history.
func (s *Store) AppendReview(cardID string, rec domain.ReviewRecord) error {
	var quality sql.NullInt64
	if rec.Quality != nil {
		quality = sql.NullInt64{Int64: int64(*rec.Quality), Valid: true}
	}
	_, err := s.conn.Exec(`
		INSERT INTO reviews (card_id, reviewed_at, response, quality)
		VALUES (?, ?, ?, ?)
	`, cardID, rec.Timestamp.UnixMilli(), string(rec.Response), quality)
	if err != nil {
		return fmt.Errorf("failed to append review for card %s: %w", cardID, err)
	}
	return nil
}

// DeleteCard removes a card and its review history.
func (s *Store) DeleteCard(id string) error {
	if _, err := s.conn.Exec(`DELETE FROM reviews WHERE card_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete reviews for card %s: %w", id, err)
	}
	if _, err := s.conn.Exec(`DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	return nil
}

// CardIDsBySource returns the IDs of all cards belonging to a source.
func (s *Store) CardIDsBySource(sourceID int64) ([]string, error) {
	rows, err := s.conn.Query(`SELECT id FROM cards WHERE source_id = ?`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for source ID %d: %w", sourceID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan card ID for source ID %d: %w", sourceID, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Source represents a card origin, either a local path or a git URL.
type Source struct {
	ID         int64
	Path       string
	Kind       string // "local" or "git"
	LastSynced time.Time
}

// InsertSource stores a new source and returns its ID.
func (s *Store) InsertSource(path, kind string) (int64, error) {
	res, err := s.conn.Exec(`
		INSERT INTO sources (path, kind)
		VALUES (?, ?)
	`, path, kind)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for source %s: %w", path, err)
	}
	return id, nil
}

// FindSourceByPath retrieves a source by its path, or nil if absent.
func (s *Store) FindSourceByPath(path string) (*Source, error) {
	var (
		src    Source
		synced sql.NullInt64
	)
	row := s.conn.QueryRow(`
		SELECT id, path, kind, last_synced
		FROM sources WHERE path = ?
	`, path)

	if err := row.Scan(&src.ID, &src.Path, &src.Kind, &synced); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Source not found
		}
		return nil, fmt.Errorf("failed to find source by path %s: %w", path, err)
	}
	if synced.Valid {
		src.LastSynced = time.UnixMilli(synced.Int64).UTC()
	}
	return &src, nil
}

// AllSources retrieves every stored source.
func (s *Store) AllSources() ([]Source, error) {
	rows, err := s.conn.Query(`
		SELECT id, path, kind, last_synced
		FROM sources
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var (
			src    Source
			synced sql.NullInt64
		)
		if err := rows.Scan(&src.ID, &src.Path, &src.Kind, &synced); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		if synced.Valid {
			src.LastSynced = time.UnixMilli(synced.Int64).UTC()
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// TouchSource updates the last_synced timestamp for a source.
func (s *Store) TouchSource(sourceID int64, at time.Time) error {
	_, err := s.conn.Exec(`
		UPDATE sources
		SET last_synced = ?
		WHERE id = ?
	`, at.UnixMilli(), sourceID)
	if err != nil {
		return fmt.Errorf("failed to update last synced for source ID %d: %w", sourceID, err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (domain.Card, error) {
	var (
		card         domain.Card
		ease         sql.NullFloat64
		interval     sql.NullInt64
		reps         sql.NullInt64
		nextReview   sql.NullInt64
		lastReviewed sql.NullInt64
	)
	err := row.Scan(&card.ID, &card.Front, &card.Back, &ease, &interval, &reps, &nextReview, &lastReviewed)
	if err != nil {
		return domain.Card{}, err
	}
	if ease.Valid {
		card.State = &domain.SchedulingState{
			EaseFactor:   ease.Float64,
			Interval:     int(interval.Int64),
			Repetitions:  int(reps.Int64),
			NextReview:   time.UnixMilli(nextReview.Int64).UTC(),
			LastReviewed: time.UnixMilli(lastReviewed.Int64).UTC(),
		}
	}
	return card, nil
}

func (s *Store) reviewsFor(cardID string) ([]domain.ReviewRecord, error) {
	rows, err := s.conn.Query(`
		SELECT reviewed_at, response, quality
		FROM reviews WHERE card_id = ?
		ORDER BY reviewed_at, id
	`, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews for card %s: %w", cardID, err)
	}
	defer rows.Close()

	var records []domain.ReviewRecord
	for rows.Next() {
		var (
			at      int64
			resp    string
			quality sql.NullInt64
		)
		if err := rows.Scan(&at, &resp, &quality); err != nil {
			return nil, fmt.Errorf("failed to scan review row for card %s: %w", cardID, err)
		}
		records = append(records, toRecord(at, resp, quality))
	}
	return records, rows.Err()
}

func toRecord(at int64, response string, quality sql.NullInt64) domain.ReviewRecord {
	rec := domain.ReviewRecord{
		Timestamp: time.UnixMilli(at).UTC(),
		Response:  domain.ResponseCategory(response),
	}
	if quality.Valid {
		q := int(quality.Int64)
		rec.Quality = &q
	}
	return rec
}
