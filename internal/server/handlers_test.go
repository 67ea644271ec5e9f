package server

import (
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/lox/blanks/internal/carddeck"
	"github.com/lox/blanks/internal/game"
	"github.com/lox/blanks/internal/randutil"
	"github.com/lox/blanks/internal/registry"
)

func testSession(t *testing.T) *game.Session {
	t.Helper()
	prompts := make([]string, 10)
	for i := range prompts {
		prompts[i] = fmt.Sprintf("Prompt %d: _.", i)
	}
	responses := make([]string, 60)
	for i := range responses {
		responses[i] = fmt.Sprintf("Response %d.", i)
	}
	pool, err := carddeck.NewPool(prompts, responses)
	require.NoError(t, err)

	sess, err := game.NewSession("r1", pool, randutil.New(42), game.WithLogger(log.New(io.Discard)))
	require.NoError(t, err)
	return sess
}

func TestBuildRoomStateHidesSubmissionsUntilAllPlayed(t *testing.T) {
	t.Parallel()
	sess := testSession(t)
	require.NoError(t, sess.Join("a", "Alice"))
	require.NoError(t, sess.Join("b", "Bob"))
	require.NoError(t, sess.Join("c", "Carol"))

	state := buildRoomState(sess)
	require.Equal(t, 2, state.Outstanding)
	require.Empty(t, state.Submissions)

	require.NoError(t, sess.SubmitCard("b", 0))
	state = buildRoomState(sess)
	require.Equal(t, 1, state.Outstanding)
	require.Empty(t, state.Submissions, "submissions must stay hidden while players are outstanding")

	require.NoError(t, sess.SubmitCard("c", 0))
	state = buildRoomState(sess)
	require.Equal(t, 0, state.Outstanding)
	require.Len(t, state.Submissions, 2)

	// Roster order with exactly one czar flagged.
	require.Len(t, state.Players, 3)
	require.Equal(t, "Alice", state.Players[0].Name)
	require.True(t, state.Players[0].IsCzar)
	require.False(t, state.Players[1].IsCzar)
}

func TestBuildPlayerState(t *testing.T) {
	t.Parallel()
	sess := testSession(t)
	require.NoError(t, sess.Join("a", "Alice"))

	state, ok := buildPlayerState(sess, "a")
	require.True(t, ok)
	require.Equal(t, "r1", state.Room)
	require.Len(t, state.Hand, game.DefaultHandSize)
	require.Zero(t, state.Score)
	require.True(t, state.IsCzar)

	_, ok = buildPlayerState(sess, "stranger")
	require.False(t, ok)
}

func TestClassifyError(t *testing.T) {
	t.Parallel()
	cases := []struct {
		err  error
		code string
	}{
		{registry.ErrGameAlreadyActive, "already_active"},
		{registry.ErrNoSuchGame, "no_such_game"},
		{registry.ErrAlreadyInAGame, "already_in_a_game"},
		{registry.ErrNotInAGame, "not_in_a_game"},
		{game.ErrIsCzar, "is_czar"},
		{game.ErrNotCzar, "not_czar"},
		{game.ErrAlreadyPlayed, "already_played"},
		{game.ErrInvalidIndex, "invalid_index"},
		{game.ErrGameEnded, "game_ended"},
		{carddeck.ErrExhausted, "deck_exhausted"},
		{fmt.Errorf("refill hand: %w", carddeck.ErrExhausted), "deck_exhausted"},
		{io.ErrUnexpectedEOF, "internal_error"},
	}

	for _, tc := range cases {
		code, msg := classifyError(tc.err)
		require.Equal(t, tc.code, code, "error %v", tc.err)
		require.NotEmpty(t, msg)
	}
}
