package game

import "errors"

// Rejections reported to the transport collaborator. All of these are
// recoverable: the caller turns them into user-facing messages and play
// continues. Deck exhaustion (carddeck.ErrExhausted) is the one fatal-to-the-
// round error and is wrapped rather than redeclared here.
var (
	ErrAlreadyJoined  = errors.New("player already in this game")
	ErrPlayerNotFound = errors.New("player not in this game")
	ErrIsCzar         = errors.New("the czar does not play a card")
	ErrNotCzar        = errors.New("only the czar judges the round")
	ErrAlreadyPlayed  = errors.New("already played a card this round")
	ErrInvalidIndex   = errors.New("card index out of range")
	ErrGameEnded      = errors.New("game has ended")

	// ErrSessionFrozen means the registry detected its maps disagreeing
	// about this session. The session stops accepting mutations rather than
	// playing on over corrupt state.
	ErrSessionFrozen = errors.New("session frozen after registry inconsistency")
)
