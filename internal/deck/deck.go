// Package deck parses markdown deck files into cards.
//
// A deck file is a sequence of cards. A card starts at a line prefixed
// with "Q:" and its answer at a line prefixed with "A:"; either side may
// continue over following unprefixed lines. Cards are separated by a
// "---" line or simply by the next "Q:" line. Lines outside a card are
// ignored, so decks can carry headings and prose around the cards.
package deck

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mnemohq/mnemo/internal/cardid"
	"github.com/mnemohq/mnemo/internal/domain"
)

const (
	frontPrefix = "Q:"
	backPrefix  = "A:"
	separator   = "---"
)

// ParseFile reads the deck file at path and returns its cards.
func ParseFile(path string) ([]domain.Card, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a deck from r. Each returned card carries its
// content-derived ID. Blocks without a question are dropped.
func Parse(r io.Reader) ([]domain.Card, error) {
	var (
		cards       []domain.Card
		front, back []string
		side        *[]string // side currently being appended to
	)

	flush := func() {
		f := strings.Join(front, "\n")
		b := strings.Join(back, "\n")
		if f != "" {
			cards = append(cards, domain.Card{
				ID:    cardid.FromContent(f, b),
				Front: f,
				Back:  b,
			})
		}
		front, back, side = nil, nil, nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == separator:
			flush()
		case strings.HasPrefix(line, frontPrefix):
			if side != nil {
				// A new question always starts a new card.
				flush()
			}
			front = append(front, body(line, frontPrefix))
			side = &front
		case strings.HasPrefix(line, backPrefix):
			back = append(back, body(line, backPrefix))
			side = &back
		default:
			if side != nil {
				*side = append(*side, line)
			}
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

// body strips the side prefix and at most one space after it, so both
// "Q: text" and "Q:text" parse to "text".
func body(line, prefix string) string {
	return strings.TrimPrefix(strings.TrimPrefix(line, prefix), " ")
}
