package carddeck

import (
	"errors"
	rand "math/rand/v2"
)

// ErrExhausted is returned when a draw is attempted on an empty deck. Cards
// are never reshuffled back in, so exhaustion ends the game rather than
// recycling.
var ErrExhausted = errors.New("deck exhausted")

// Deck deals cards from a shuffled copy of its source pool. Every card is
// dealt at most once.
type Deck struct {
	cards []Card
}

// NewDeck copies src and shuffles the copy with rng.
func NewDeck(src []Card, rng *rand.Rand) *Deck {
	cards := make([]Card, len(src))
	copy(cards, src)
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{cards: cards}
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return "", ErrExhausted
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, nil
}

// Remaining returns the number of undrawn cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
