package game

import "github.com/lox/blanks/internal/carddeck"

// Player is one participant's per-session state. Access is serialized by the
// owning session's lock.
type Player struct {
	ID   string
	Name string

	hand []carddeck.Card
	won  []carddeck.Card
}

// NewPlayer creates a player with an empty hand and no wins.
func NewPlayer(id, name string) *Player {
	return &Player{ID: id, Name: name}
}

// Receive appends one response card to the hand.
func (p *Player) Receive(card carddeck.Card) {
	p.hand = append(p.hand, card)
}

// PlayFromHand removes and returns the card at a 0-based hand position. The
// caller deals the replacement; this does not refill.
func (p *Player) PlayFromHand(index int) (carddeck.Card, error) {
	if index < 0 || index >= len(p.hand) {
		return "", ErrInvalidIndex
	}
	card := p.hand[index]
	p.hand = append(p.hand[:index], p.hand[index+1:]...)
	return card, nil
}

// AwardWin adds a won prompt card to the trophy list.
func (p *Player) AwardWin(card carddeck.Card) {
	p.won = append(p.won, card)
}

// Hand returns a copy of the current hand in stable order.
func (p *Player) Hand() []carddeck.Card {
	hand := make([]carddeck.Card, len(p.hand))
	copy(hand, p.hand)
	return hand
}

// HandSize returns the number of cards held.
func (p *Player) HandSize() int {
	return len(p.hand)
}

// Score is the number of rounds won.
func (p *Player) Score() int {
	return len(p.won)
}
