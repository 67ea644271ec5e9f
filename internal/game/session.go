package game

import (
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blanks/internal/carddeck"
)

// DefaultHandSize is how many response cards each player holds.
const DefaultHandSize = 8

// Result reports a judged round so the caller can broadcast it.
type Result struct {
	WinnerID    string
	WinnerName  string
	WinningCard carddeck.Card
	Prompt      carddeck.Card // the prompt the winner takes as a trophy
	Score       int
	NextPrompt  carddeck.Card
}

// PlayerInfo is a read-only roster snapshot entry.
type PlayerInfo struct {
	ID     string
	Name   string
	Score  int
	IsCzar bool
}

// Session is one room's game: its decks, roster, current round, and czar.
// Every mutation runs under a single mutex so concurrent submissions cannot
// double-count and deck draws cannot hand out the same card twice. Reads take
// the lock too and return copied snapshots.
type Session struct {
	roomID string

	mu         sync.RWMutex
	players    map[string]*Player
	order      []string // join order, drives czar succession
	czarID     string
	prompts    *carddeck.Deck
	responses  *carddeck.Deck
	round      *Round
	ended      bool
	frozen     bool
	emptySince time.Time

	handSize int
	clock    quartz.Clock
	logger   *log.Logger
}

// Option configures a session.
type Option func(*Session)

// WithHandSize overrides the dealt hand size.
func WithHandSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.handSize = n
		}
	}
}

// WithClock injects the clock used for idle tracking. Defaults to the real
// clock; tests pass a quartz mock.
func WithClock(clock quartz.Clock) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithLogger sets the parent logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession builds fresh decks from the pool, draws the opening prompt, and
// returns a session with an empty roster and no czar.
func NewSession(roomID string, pool *carddeck.Pool, rng *rand.Rand, opts ...Option) (*Session, error) {
	s := &Session{
		roomID:   roomID,
		players:  make(map[string]*Player),
		handSize: DefaultHandSize,
		clock:    quartz.NewReal(),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithPrefix("session").With("room", roomID)

	s.prompts = carddeck.NewDeck(pool.Prompts, rng)
	s.responses = carddeck.NewDeck(pool.Responses, rng)

	prompt, err := s.prompts.Draw()
	if err != nil {
		return nil, fmt.Errorf("draw opening prompt: %w", err)
	}
	s.round = NewRound(prompt)
	s.emptySince = s.clock.Now()
	return s, nil
}

// RoomID returns the room this session belongs to.
func (s *Session) RoomID() string {
	return s.roomID
}

// Join registers a new player, deals them a starting hand, and appoints them
// czar if they are the first in. The roster is unchanged when the deal fails.
func (s *Session) Join(playerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutable(); err != nil {
		return err
	}
	if _, ok := s.players[playerID]; ok {
		return ErrAlreadyJoined
	}

	p := NewPlayer(playerID, name)
	for i := 0; i < s.handSize; i++ {
		card, err := s.responses.Draw()
		if err != nil {
			return fmt.Errorf("deal starting hand: %w", err)
		}
		p.Receive(card)
	}

	s.players[playerID] = p
	s.order = append(s.order, playerID)
	if s.czarID == "" {
		s.czarID = playerID
	}
	s.logger.Info("player joined", "player", name, "roster", len(s.players), "czar", s.czarID == playerID)
	return nil
}

// Leave removes a player. Any pending submission is purged and, when the
// departing player was czar, succession runs to the next player by join
// order. All of it happens in one critical section so a concurrent judge
// can never see the half-removed state.
func (s *Session) Leave(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutable(); err != nil {
		return err
	}
	p, ok := s.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}

	delete(s.players, playerID)
	for i, id := range s.order {
		if id == playerID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	// The departing hand and any pending submission leave circulation for
	// good; nothing returns to the deck.
	if _, purged := s.round.Remove(playerID); purged {
		s.logger.Debug("purged pending submission", "player", p.Name)
	}

	if s.czarID == playerID {
		s.czarID = ""
		if len(s.order) > 0 {
			s.czarID = s.order[0]
			// The successor may have played earlier in this round; the czar
			// must never sit in the ledger, so that entry goes too.
			if _, purged := s.round.Remove(s.czarID); purged {
				s.logger.Debug("purged new czar's submission", "czar", s.czarID)
			}
		}
		s.logger.Info("czar departed, succession", "new_czar", s.czarID)
	}

	if len(s.players) == 0 {
		s.emptySince = s.clock.Now()
	}
	s.logger.Info("player left", "player", p.Name, "roster", len(s.players))
	return nil
}

// SubmitCard plays the card at handIndex from the player's hand into the
// round ledger and immediately deals a replacement, so the hand returns to
// its dealt size after every play.
func (s *Session) SubmitCard(playerID string, handIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutable(); err != nil {
		return err
	}
	p, ok := s.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	if playerID == s.czarID {
		return ErrIsCzar
	}
	// Checked before the card leaves the hand so a duplicate message
	// rejects cleanly.
	if s.round.HasPlayed(playerID) {
		return ErrAlreadyPlayed
	}

	card, err := p.PlayFromHand(handIndex)
	if err != nil {
		return err
	}
	if err := s.round.Submit(playerID, card); err != nil {
		return err
	}

	refill, err := s.responses.Draw()
	if err != nil {
		return fmt.Errorf("refill hand: %w", err)
	}
	p.Receive(refill)

	s.logger.Debug("card submitted", "player", p.Name, "submissions", s.round.Len())
	return nil
}

// JudgeRound resolves the round. Only the current czar may call it. The
// winner takes the prompt card as a trophy and becomes the next czar, the
// ledger clears, and a fresh prompt opens the next round. Since the czar
// never submits, the winner is always someone else and czar rotation is
// guaranteed.
func (s *Session) JudgeRound(czarID string, index int) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutable(); err != nil {
		return Result{}, err
	}
	if czarID != s.czarID {
		return Result{}, ErrNotCzar
	}

	sub, err := s.round.Resolve(index)
	if err != nil {
		return Result{}, err
	}
	winner, ok := s.players[sub.PlayerID]
	if !ok {
		// Leave purges the ledger, so a submission always belongs to a
		// seated player.
		return Result{}, ErrPlayerNotFound
	}

	prompt := s.round.Prompt()
	winner.AwardWin(prompt)

	next, err := s.prompts.Draw()
	if err != nil {
		return Result{}, fmt.Errorf("draw next prompt: %w", err)
	}
	s.round = NewRound(next)
	s.czarID = winner.ID

	s.logger.Info("round judged", "winner", winner.Name, "score", winner.Score())
	return Result{
		WinnerID:    winner.ID,
		WinnerName:  winner.Name,
		WinningCard: sub.Card,
		Prompt:      prompt,
		Score:       winner.Score(),
		NextPrompt:  next,
	}, nil
}

// End moves the session to its terminal state. Every later operation
// returns ErrGameEnded.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.logger.Info("session ended", "rounds_left", s.prompts.Remaining())
}

// Freeze halts all further mutation of the session. Called by the registry
// when its maps and this roster disagree.
func (s *Session) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
	s.logger.Error("session frozen")
}

func (s *Session) mutable() error {
	switch {
	case s.ended:
		return ErrGameEnded
	case s.frozen:
		return ErrSessionFrozen
	}
	return nil
}

// CurrentPrompt returns the prompt being played for.
func (s *Session) CurrentPrompt() carddeck.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.round.Prompt()
}

// Outstanding returns how many players still need to play this round.
func (s *Session) Outstanding() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.round.Outstanding(len(s.players))
}

// HandOf returns a copy of a player's current hand.
func (s *Session) HandOf(playerID string) ([]carddeck.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return p.Hand(), nil
}

// ScoreOf returns a player's trophy count.
func (s *Session) ScoreOf(playerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[playerID]
	if !ok {
		return 0, ErrPlayerNotFound
	}
	return p.Score(), nil
}

// IsCzar reports whether playerID is the current czar.
func (s *Session) IsCzar(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return playerID != "" && playerID == s.czarID
}

// Czar returns the current czar's id, empty before the first join.
func (s *Session) Czar() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.czarID
}

// PlayerCount returns the roster size.
func (s *Session) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// Players returns a roster snapshot in join order.
func (s *Session) Players() []PlayerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PlayerInfo, 0, len(s.order))
	for _, id := range s.order {
		p := s.players[id]
		out = append(out, PlayerInfo{
			ID:     p.ID,
			Name:   p.Name,
			Score:  p.Score(),
			IsCzar: id == s.czarID,
		})
	}
	return out
}

// Submissions returns a copy of the round ledger in submission order.
func (s *Session) Submissions() []Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.round.Submissions()
}

// Ended reports whether the session reached its terminal state.
func (s *Session) Ended() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ended
}

// EmptySince reports when the roster last became empty. ok is false while
// players are seated.
func (s *Session) EmptySince() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.players) > 0 {
		return time.Time{}, false
	}
	return s.emptySince, true
}
