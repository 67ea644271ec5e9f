package server

import (
	"encoding/json"
	"errors"

	"github.com/lox/blanks/internal/carddeck"
	"github.com/lox/blanks/internal/game"
	"github.com/lox/blanks/internal/registry"
)

// handleCommand routes one client command. Rejections go back to the issuing
// connection only; accepted mutations are followed by a fresh snapshot
// broadcast to the whole room.
func (s *Server) handleCommand(c *Connection, msg *Message) {
	s.logger.Debug("command received", "type", msg.Type, "player", c.PlayerID())

	switch msg.Type {
	case MessageTypeStart:
		var data StartData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse start data")
			return
		}
		s.handleStart(c, data)

	case MessageTypeJoin:
		var data JoinData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse join data")
			return
		}
		s.handleJoin(c, data)

	case MessageTypeLeave:
		s.handleLeave(c)

	case MessageTypeEnd:
		var data EndData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse end data")
			return
		}
		s.handleEnd(c, data)

	case MessageTypeSubmit:
		var data SubmitData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse submit data")
			return
		}
		s.handleSubmit(c, data)

	case MessageTypeJudge:
		var data JudgeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse judge data")
			return
		}
		s.handleJudge(c, data)

	case MessageTypeState:
		s.handleState(c)

	default:
		c.sendError("unknown_message_type", "unknown message type: "+string(msg.Type))
	}
}

func (s *Server) handleStart(c *Connection, data StartData) {
	if data.Room == "" || data.Name == "" {
		c.sendError("invalid_message", "start requires room and name")
		return
	}
	sess, err := s.registry.StartGame(data.Room, c.PlayerID(), data.Name)
	if err != nil {
		s.rejectOrGameOver(c, data.Room, err)
		return
	}
	c.SetRoom(data.Room)
	s.broadcastRoomState(sess)
}

func (s *Server) handleJoin(c *Connection, data JoinData) {
	if data.Room == "" || data.Name == "" {
		c.sendError("invalid_message", "join requires room and name")
		return
	}
	sess, err := s.registry.JoinGame(data.Room, c.PlayerID(), data.Name)
	if err != nil {
		s.rejectOrGameOver(c, data.Room, err)
		return
	}
	c.SetRoom(data.Room)
	s.broadcastRoomState(sess)
}

func (s *Server) handleLeave(c *Connection) {
	sess, err := s.registry.LeaveGame(c.PlayerID())
	if err != nil {
		s.reject(c, err)
		return
	}
	c.SetRoom("")
	s.broadcastRoomState(sess)
}

func (s *Server) handleEnd(c *Connection, data EndData) {
	if data.Room == "" {
		c.sendError("invalid_message", "end requires room")
		return
	}
	if err := s.registry.EndGame(data.Room); err != nil {
		s.reject(c, err)
		return
	}
	s.announceGameOver(data.Room, "game ended")
}

func (s *Server) handleSubmit(c *Connection, data SubmitData) {
	sess, err := s.registry.LookupByPlayer(c.PlayerID())
	if err != nil {
		s.reject(c, err)
		return
	}
	if err := sess.SubmitCard(c.PlayerID(), data.Index); err != nil {
		s.rejectOrGameOver(c, sess.RoomID(), err)
		return
	}
	s.broadcastRoomState(sess)
}

func (s *Server) handleJudge(c *Connection, data JudgeData) {
	sess, err := s.registry.LookupByPlayer(c.PlayerID())
	if err != nil {
		s.reject(c, err)
		return
	}
	result, err := sess.JudgeRound(c.PlayerID(), data.Index)
	if err != nil {
		s.rejectOrGameOver(c, sess.RoomID(), err)
		return
	}

	announcement, err := NewMessage(MessageTypeRoundResult, RoundResultData{
		Room:        sess.RoomID(),
		Winner:      result.WinnerName,
		WinningCard: string(result.WinningCard),
		Prompt:      string(result.Prompt),
		Score:       result.Score,
		NextPrompt:  string(result.NextPrompt),
		NextCzar:    result.WinnerName,
	})
	if err != nil {
		s.logger.Error("failed to create round result message", "error", err)
		return
	}
	s.broadcastToRoom(sess.RoomID(), announcement)
	s.broadcastRoomState(sess)
}

func (s *Server) handleState(c *Connection) {
	sess, err := s.registry.LookupByPlayer(c.PlayerID())
	if err != nil {
		s.reject(c, err)
		return
	}
	s.sendSnapshots(c, sess)
}

// reject maps a rejection onto the wire and sends it to the issuing client.
func (s *Server) reject(c *Connection, err error) {
	code, message := classifyError(err)
	c.sendError(code, message)
}

// rejectOrGameOver handles the one fatal-to-the-round error specially: a
// deck running dry means the game cannot continue, so the room is torn down
// and everyone hears about it. Everything else is an ordinary rejection.
func (s *Server) rejectOrGameOver(c *Connection, room string, err error) {
	if errors.Is(err, carddeck.ErrExhausted) {
		s.logger.Warn("deck exhausted, ending game", "room", room)
		s.announceGameOver(room, "the deck ran out of cards")
		if endErr := s.registry.EndGame(room); endErr != nil && !errors.Is(endErr, registry.ErrNoSuchGame) {
			s.logger.Error("failed to end exhausted game", "room", room, "error", endErr)
		}
		return
	}
	s.reject(c, err)
}

// announceGameOver tells the room the game is gone and detaches its
// connections.
func (s *Server) announceGameOver(room, reason string) {
	msg, err := NewMessage(MessageTypeGameOver, GameOverData{Room: room, Reason: reason})
	if err != nil {
		s.logger.Error("failed to create game over message", "error", err)
		return
	}
	for _, conn := range s.connectionsInRoom(room) {
		_ = conn.SendMessage(msg)
		conn.SetRoom("")
	}
}

// broadcastRoomState re-queries the session's post-mutation snapshot and
// fans it out: the shared room view to everyone, the private hand view to
// each player. Snapshots are taken after the mutation's lock released, never
// computed from stale pre-mutation data.
func (s *Server) broadcastRoomState(sess *game.Session) {
	state := buildRoomState(sess)
	msg, err := NewMessage(MessageTypeRoomState, state)
	if err != nil {
		s.logger.Error("failed to create room state message", "error", err)
		return
	}

	for _, conn := range s.connectionsInRoom(sess.RoomID()) {
		if err := conn.SendMessage(msg); err != nil {
			continue
		}
		s.sendPlayerState(conn, sess)
	}
}

// sendSnapshots sends both views to a single connection.
func (s *Server) sendSnapshots(c *Connection, sess *game.Session) {
	msg, err := NewMessage(MessageTypeRoomState, buildRoomState(sess))
	if err != nil {
		s.logger.Error("failed to create room state message", "error", err)
		return
	}
	if err := c.SendMessage(msg); err != nil {
		return
	}
	s.sendPlayerState(c, sess)
}

func (s *Server) sendPlayerState(c *Connection, sess *game.Session) {
	state, ok := buildPlayerState(sess, c.PlayerID())
	if !ok {
		return
	}
	msg, err := NewMessage(MessageTypePlayerState, state)
	if err != nil {
		s.logger.Error("failed to create player state message", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// buildRoomState assembles the shared room view. Submitted cards stay
// hidden until every non-czar player has played, then they are revealed
// face-down (text only, no attribution) for judging.
func buildRoomState(sess *game.Session) RoomStateData {
	players := sess.Players()
	summaries := make([]PlayerSummary, len(players))
	for i, p := range players {
		summaries[i] = PlayerSummary{Name: p.Name, Score: p.Score, IsCzar: p.IsCzar}
	}

	state := RoomStateData{
		Room:        sess.RoomID(),
		Prompt:      string(sess.CurrentPrompt()),
		Outstanding: sess.Outstanding(),
		Players:     summaries,
	}

	if subs := sess.Submissions(); state.Outstanding == 0 && len(subs) > 0 {
		cards := make([]string, len(subs))
		for i, sub := range subs {
			cards[i] = string(sub.Card)
		}
		state.Submissions = cards
	}
	return state
}

// buildPlayerState assembles one player's private view. ok is false when
// the player is not (or no longer) in the session.
func buildPlayerState(sess *game.Session, playerID string) (PlayerStateData, bool) {
	hand, err := sess.HandOf(playerID)
	if err != nil {
		return PlayerStateData{}, false
	}
	score, err := sess.ScoreOf(playerID)
	if err != nil {
		return PlayerStateData{}, false
	}

	cards := make([]string, len(hand))
	for i, card := range hand {
		cards[i] = string(card)
	}
	return PlayerStateData{
		Room:   sess.RoomID(),
		Hand:   cards,
		Score:  score,
		IsCzar: sess.IsCzar(playerID),
	}, true
}

// classifyError maps rejections to wire codes and user-facing text.
func classifyError(err error) (string, string) {
	switch {
	case errors.Is(err, registry.ErrGameAlreadyActive):
		return "already_active", "a game is already running in this room"
	case errors.Is(err, registry.ErrNoSuchGame):
		return "no_such_game", "no game in progress in this room"
	case errors.Is(err, registry.ErrAlreadyInAGame):
		return "already_in_a_game", "you're already in a game"
	case errors.Is(err, registry.ErrNotInAGame):
		return "not_in_a_game", "you're not in a game"
	case errors.Is(err, game.ErrAlreadyJoined):
		return "already_joined", "you already joined this game"
	case errors.Is(err, game.ErrIsCzar):
		return "is_czar", "the czar doesn't play a card this round"
	case errors.Is(err, game.ErrNotCzar):
		return "not_czar", "only the czar can judge the round"
	case errors.Is(err, game.ErrAlreadyPlayed):
		return "already_played", "you already played a card this round"
	case errors.Is(err, game.ErrInvalidIndex):
		return "invalid_index", "that card index doesn't exist"
	case errors.Is(err, game.ErrGameEnded):
		return "game_ended", "this game has ended"
	case errors.Is(err, carddeck.ErrExhausted):
		return "deck_exhausted", "the deck ran out of cards"
	default:
		return "internal_error", "something went wrong"
	}
}
