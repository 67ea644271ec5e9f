package game

import "github.com/lox/blanks/internal/carddeck"

// Submission pairs a player with the response card they played this round.
type Submission struct {
	PlayerID string
	Card     carddeck.Card
}

// Round holds the current prompt and the append-ordered submission ledger.
// Insertion order is load-bearing: the czar picks a winner by index into the
// ledger, so it must never be backed by an unordered map.
type Round struct {
	prompt      carddeck.Card
	submissions []Submission
}

// NewRound opens a round for the given prompt with an empty ledger.
func NewRound(prompt carddeck.Card) *Round {
	return &Round{prompt: prompt}
}

// Prompt returns the prompt card being played for.
func (r *Round) Prompt() carddeck.Card {
	return r.prompt
}

// HasPlayed reports whether playerID already has a ledger entry.
func (r *Round) HasPlayed(playerID string) bool {
	for _, s := range r.submissions {
		if s.PlayerID == playerID {
			return true
		}
	}
	return false
}

// Submit appends a submission. Each player gets at most one entry per round,
// so a duplicate (e.g. a replayed network message) is rejected and the
// ledger is unchanged.
func (r *Round) Submit(playerID string, card carddeck.Card) error {
	if r.HasPlayed(playerID) {
		return ErrAlreadyPlayed
	}
	r.submissions = append(r.submissions, Submission{PlayerID: playerID, Card: card})
	return nil
}

// Remove purges a player's pending submission, returning the card if one was
// present. Used when a player leaves mid-round.
func (r *Round) Remove(playerID string) (carddeck.Card, bool) {
	for i, s := range r.submissions {
		if s.PlayerID == playerID {
			r.submissions = append(r.submissions[:i], r.submissions[i+1:]...)
			return s.Card, true
		}
	}
	return "", false
}

// Outstanding returns how many of totalPlayers have yet to play, excluding
// the czar. Clamped at zero: departures are purged from the ledger, so a
// negative value would mean a consistency bug, not real state.
func (r *Round) Outstanding(totalPlayers int) int {
	n := totalPlayers - len(r.submissions) - 1
	if n < 0 {
		n = 0
	}
	return n
}

// Resolve returns the submission at index in ledger order.
func (r *Round) Resolve(index int) (Submission, error) {
	if index < 0 || index >= len(r.submissions) {
		return Submission{}, ErrInvalidIndex
	}
	return r.submissions[index], nil
}

// Submissions returns a copy of the ledger in insertion order.
func (r *Round) Submissions() []Submission {
	out := make([]Submission, len(r.submissions))
	copy(out, r.submissions)
	return out
}

// Len returns the number of submissions so far.
func (r *Round) Len() int {
	return len(r.submissions)
}
