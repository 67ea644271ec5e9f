package registry

import (
	"errors"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blanks/internal/carddeck"
	"github.com/lox/blanks/internal/game"
	"github.com/lox/blanks/internal/randutil"
)

// Rejections for room and membership lifecycle operations.
var (
	ErrGameAlreadyActive = errors.New("a game is already active in this room")
	ErrNoSuchGame        = errors.New("no game in progress in this room")
	ErrAlreadyInAGame    = errors.New("player is already in a game")
	ErrNotInAGame        = errors.New("player is not in a game")

	// ErrInconsistent means the room index and the player index disagreed.
	// It signals a programming error, never user input: the affected
	// session is frozen rather than mutated further.
	ErrInconsistent = errors.New("registry maps are inconsistent")
)

// Registry is the process-wide index of active sessions: room id to session
// and player id to the room they are playing in. The two maps only ever
// change together, under one lock, so readers always observe them agreeing.
//
// A registry is constructed once at startup and torn down with the process;
// there is no implicit global.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
	playing  map[string]string // player id -> room id
	rng      *rand.Rand        // seeds per-session RNGs, guarded by mu

	pool     *carddeck.Pool
	handSize int
	clock    quartz.Clock
	logger   *log.Logger
}

// Option configures a registry.
type Option func(*Registry)

// WithHandSize sets the hand size dealt in every session.
func WithHandSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.handSize = n
		}
	}
}

// WithClock injects the clock shared by the registry and its sessions.
func WithClock(clock quartz.Clock) Option {
	return func(r *Registry) {
		r.clock = clock
	}
}

// New constructs a registry dealing from pool. rng seeds each session's
// deck shuffles; pass a seeded randutil RNG for reproducible games.
func New(pool *carddeck.Pool, rng *rand.Rand, logger *log.Logger, opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*game.Session),
		playing:  make(map[string]string),
		rng:      rng,
		pool:     pool,
		handSize: game.DefaultHandSize,
		clock:    quartz.NewReal(),
		logger:   logger.WithPrefix("registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StartGame creates the room's session and seats its first player as one
// atomic unit: either the session exists with its player index entry, or
// neither does.
func (r *Registry) StartGame(roomID, playerID, name string) (*game.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[roomID]; ok {
		return nil, ErrGameAlreadyActive
	}
	if _, ok := r.playing[playerID]; ok {
		return nil, ErrAlreadyInAGame
	}

	sess, err := game.NewSession(roomID, r.pool, randutil.New(r.rng.Int64()),
		game.WithHandSize(r.handSize),
		game.WithClock(r.clock),
		game.WithLogger(r.logger),
	)
	if err != nil {
		return nil, err
	}
	if err := sess.Join(playerID, name); err != nil {
		return nil, err
	}

	r.sessions[roomID] = sess
	r.playing[playerID] = roomID
	r.logger.Info("game started", "room", roomID, "player", name, "rooms", len(r.sessions))
	return sess, nil
}

// JoinGame seats a player in an existing room. A player belongs to at most
// one room process-wide.
func (r *Registry) JoinGame(roomID, playerID, name string) (*game.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.playing[playerID]; ok {
		return nil, ErrAlreadyInAGame
	}
	sess, ok := r.sessions[roomID]
	if !ok {
		return nil, ErrNoSuchGame
	}
	if err := sess.Join(playerID, name); err != nil {
		return nil, err
	}
	r.playing[playerID] = roomID
	return sess, nil
}

// LeaveGame removes the player from their session and from the player index
// together. The emptied room stays registered until EndGame (or the
// janitor, when enabled) tears it down.
func (r *Registry) LeaveGame(playerID string) (*game.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.playing[playerID]
	if !ok {
		return nil, ErrNotInAGame
	}
	sess, ok := r.sessions[roomID]
	if !ok {
		delete(r.playing, playerID)
		r.logger.Error("player indexed to a missing room", "player", playerID, "room", roomID)
		return nil, ErrInconsistent
	}

	err := sess.Leave(playerID)
	switch {
	case err == nil:
	case errors.Is(err, game.ErrPlayerNotFound):
		// The index said they were seated here; the roster disagrees.
		delete(r.playing, playerID)
		sess.Freeze()
		r.logger.Error("player index and roster disagree", "player", playerID, "room", roomID)
		return nil, ErrInconsistent
	default:
		return nil, err
	}

	delete(r.playing, playerID)
	return sess, nil
}

// EndGame tears down a room: the session ends and every player index entry
// pointing at it is removed in the same critical section.
func (r *Registry) EndGame(roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[roomID]
	if !ok {
		return ErrNoSuchGame
	}
	r.removeLocked(roomID, sess)
	return nil
}

func (r *Registry) removeLocked(roomID string, sess *game.Session) {
	sess.End()
	delete(r.sessions, roomID)
	for playerID, room := range r.playing {
		if room == roomID {
			delete(r.playing, playerID)
		}
	}
	r.logger.Info("game ended", "room", roomID, "rooms", len(r.sessions))
}

// LookupByPlayer returns the session the player is currently in. This is
// the primary read path for every per-player operation.
func (r *Registry) LookupByPlayer(playerID string) (*game.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomID, ok := r.playing[playerID]
	if !ok {
		return nil, ErrNotInAGame
	}
	sess, ok := r.sessions[roomID]
	if !ok {
		r.logger.Error("player indexed to a missing room", "player", playerID, "room", roomID)
		return nil, ErrInconsistent
	}
	return sess, nil
}

// LookupRoom returns the session for a room id.
func (r *Registry) LookupRoom(roomID string) (*game.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[roomID]
	if !ok {
		return nil, ErrNoSuchGame
	}
	return sess, nil
}

// GameCount returns the number of active rooms.
func (r *Registry) GameCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// PlayerCount returns the number of seated players across all rooms.
func (r *Registry) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.playing)
}
