package registry

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/blanks/internal/carddeck"
	"github.com/lox/blanks/internal/game"
	"github.com/lox/blanks/internal/randutil"
)

func testPool(t *testing.T, prompts, responses int) *carddeck.Pool {
	t.Helper()
	ps := make([]string, prompts)
	for i := range ps {
		ps[i] = fmt.Sprintf("Prompt %d: _.", i)
	}
	rs := make([]string, responses)
	for i := range rs {
		rs[i] = fmt.Sprintf("Response %d.", i)
	}
	pool, err := carddeck.NewPool(ps, rs)
	require.NoError(t, err)
	return pool
}

func testRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	return New(testPool(t, 50, 500), randutil.New(42), log.New(io.Discard), opts...)
}

func TestRegistryStartGame(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	sess, err := reg.StartGame("r1", "a", "Alice")
	require.NoError(t, err)
	require.True(t, sess.IsCzar("a"))
	require.Equal(t, 1, reg.GameCount())
	require.Equal(t, 1, reg.PlayerCount())

	_, err = reg.StartGame("r1", "b", "Bob")
	require.ErrorIs(t, err, ErrGameAlreadyActive)

	// A seated player cannot open a second room.
	_, err = reg.StartGame("r2", "a", "Alice")
	require.ErrorIs(t, err, ErrAlreadyInAGame)
}

func TestRegistryJoinGame(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	_, err := reg.JoinGame("nowhere", "b", "Bob")
	require.ErrorIs(t, err, ErrNoSuchGame)

	started, err := reg.StartGame("r1", "a", "Alice")
	require.NoError(t, err)

	joined, err := reg.JoinGame("r1", "b", "Bob")
	require.NoError(t, err)
	require.Same(t, started, joined)
	require.Equal(t, 2, joined.PlayerCount())

	_, err = reg.JoinGame("r1", "b", "Bob")
	require.ErrorIs(t, err, ErrAlreadyInAGame)

	byPlayer, err := reg.LookupByPlayer("b")
	require.NoError(t, err)
	require.Same(t, started, byPlayer)
}

func TestRegistryJoinLeaveRoundTrip(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	_, err := reg.StartGame("r1", "a", "Alice")
	require.NoError(t, err)
	_, err = reg.JoinGame("r1", "b", "Bob")
	require.NoError(t, err)

	_, err = reg.LeaveGame("b")
	require.NoError(t, err)
	_, err = reg.LookupByPlayer("b")
	require.ErrorIs(t, err, ErrNotInAGame)

	// Rejoining with the same id works as if new.
	sess, err := reg.JoinGame("r1", "b", "Bob")
	require.NoError(t, err)
	require.Equal(t, 2, sess.PlayerCount())

	_, err = reg.LeaveGame("ghost")
	require.ErrorIs(t, err, ErrNotInAGame)
}

func TestRegistryEmptyRoomPersists(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	_, err := reg.StartGame("r1", "a", "Alice")
	require.NoError(t, err)
	_, err = reg.LeaveGame("a")
	require.NoError(t, err)

	// The room stays registered until an explicit end.
	require.Equal(t, 1, reg.GameCount())
	require.Equal(t, 0, reg.PlayerCount())

	sess, err := reg.JoinGame("r1", "b", "Bob")
	require.NoError(t, err)
	require.True(t, sess.IsCzar("b"))
}

func TestRegistryEndGame(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	sess, err := reg.StartGame("r1", "a", "Alice")
	require.NoError(t, err)
	_, err = reg.JoinGame("r1", "b", "Bob")
	require.NoError(t, err)

	require.NoError(t, reg.EndGame("r1"))
	require.Equal(t, 0, reg.GameCount())
	require.Equal(t, 0, reg.PlayerCount())

	_, err = reg.LookupByPlayer("a")
	require.ErrorIs(t, err, ErrNotInAGame)

	// The ended session rejects stragglers holding a stale pointer.
	require.ErrorIs(t, sess.Join("c", "Carol"), game.ErrGameEnded)

	// Freed players can start fresh games.
	_, err = reg.StartGame("r2", "a", "Alice")
	require.NoError(t, err)

	require.ErrorIs(t, reg.EndGame("r1"), ErrNoSuchGame)
}

func TestRegistryStartGameDealFailureLeavesNoState(t *testing.T) {
	t.Parallel()
	// Not enough responses for even one starting hand.
	reg := New(testPool(t, 10, game.DefaultHandSize-1), randutil.New(42), log.New(io.Discard))

	_, err := reg.StartGame("r1", "a", "Alice")
	require.ErrorIs(t, err, carddeck.ErrExhausted)
	require.Equal(t, 0, reg.GameCount())
	require.Equal(t, 0, reg.PlayerCount())

	_, err = reg.LookupByPlayer("a")
	require.ErrorIs(t, err, ErrNotInAGame)
}

func TestRegistryConcurrentRooms(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	const rooms = 10
	var wg sync.WaitGroup
	for i := 0; i < rooms; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room := fmt.Sprintf("room-%d", i)
			starter := fmt.Sprintf("starter-%d", i)
			joiner := fmt.Sprintf("joiner-%d", i)
			if _, err := reg.StartGame(room, starter, starter); err != nil {
				t.Errorf("start %s: %v", room, err)
				return
			}
			if _, err := reg.JoinGame(room, joiner, joiner); err != nil {
				t.Errorf("join %s: %v", room, err)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, rooms, reg.GameCount())
	require.Equal(t, rooms*2, reg.PlayerCount())

	for i := 0; i < rooms; i++ {
		sess, err := reg.LookupRoom(fmt.Sprintf("room-%d", i))
		require.NoError(t, err)
		require.Equal(t, 2, sess.PlayerCount())
	}
}

func TestRegistryJanitorReapsIdleRooms(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mock := quartz.NewMock(t)
	reg := testRegistry(t, WithClock(mock))

	_, err := reg.StartGame("idle", "a", "Alice")
	require.NoError(t, err)
	_, err = reg.StartGame("busy", "b", "Bob")
	require.NoError(t, err)
	_, err = reg.LeaveGame("a")
	require.NoError(t, err)

	trap := mock.Trap().TickerFunc("janitor")
	defer trap.Close()

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = reg.RunJanitor(janitorCtx, time.Minute, time.Minute)
	}()
	trap.MustWait(ctx).Release()

	// First tick: the idle room has been empty exactly one interval.
	mock.Advance(time.Minute).MustWait(ctx)

	require.Equal(t, 1, reg.GameCount())
	_, err = reg.LookupRoom("idle")
	require.ErrorIs(t, err, ErrNoSuchGame)

	// The occupied room is never reaped.
	mock.Advance(time.Minute).MustWait(ctx)
	_, err = reg.LookupRoom("busy")
	require.NoError(t, err)

	stopJanitor()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("janitor did not stop")
	}
}
