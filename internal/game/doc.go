// Package game implements the per-room state machine for the
// fill-in-the-blank card game: players and their hands, the round's
// submission ledger, and the czar rotation.
//
// The main type is Session, which owns both decks for its room and
// serializes every mutation behind one lock. The transport layer calls
// Join, Leave, SubmitCard and JudgeRound, then re-queries the read-only
// snapshot methods to broadcast post-mutation state.
//
// For deterministic play in tests, construct sessions with a seeded
// randutil RNG and a quartz mock clock:
//
//	sess, err := game.NewSession("room", pool, randutil.New(42),
//		game.WithClock(quartz.NewMock(t)))
package game
