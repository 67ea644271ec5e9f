package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/blanks/internal/registry"
)

// Server is the WebSocket transport collaborator. It resolves connections to
// player identities, forwards their commands to the registry, and broadcasts
// post-mutation snapshots back to every connection in the affected room. It
// performs no game logic of its own.
type Server struct {
	addr       string
	upgrader   websocket.Upgrader
	registry   *registry.Registry
	logger     *log.Logger
	register   chan *Connection
	unregister chan *Connection
	ctx        context.Context
	cancel     context.CancelFunc

	mu          sync.RWMutex
	connections map[*Connection]bool
}

// NewServer creates a WebSocket server fronting the given registry.
func NewServer(addr string, reg *registry.Registry, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// The chat collaborator fronts this server; origin policy
				// belongs there.
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		registry:    reg,
		logger:      logger.WithPrefix("server"),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
		connections: make(map[*Connection]bool),
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	httpServer := &http.Server{Addr: s.addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		s.Stop()
		return err
	}
}

// Stop closes every connection and halts the run loop.
func (s *Server) Stop() {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()
}

// run handles connection lifecycle.
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			_, ok := s.connections[conn]
			if ok {
				delete(s.connections, conn)
			}
			total := len(s.connections)
			s.mu.Unlock()
			if !ok {
				continue
			}

			// A dropped connection leaves its game the same way an explicit
			// leave would, czar succession and ledger purge included.
			if room := conn.Room(); room != "" {
				if sess, err := s.registry.LeaveGame(conn.PlayerID()); err == nil {
					s.broadcastRoomState(sess)
				} else {
					s.logger.Error("cleanup after disconnect failed", "player", conn.PlayerID(), "error", err)
				}
			}
			_ = conn.Close()
			s.logger.Info("client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket upgrades the request and greets the client with its
// player identity.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := NewConnection(wsConn, s, s.logger)
	conn.Start()

	select {
	case s.register <- conn:
	case <-s.ctx.Done():
		_ = conn.Close()
		return
	}

	welcome, err := NewMessage(MessageTypeWelcome, WelcomeData{PlayerID: conn.PlayerID()})
	if err != nil {
		s.logger.Error("failed to create welcome message", "error", err)
		return
	}
	_ = conn.SendMessage(welcome)
}

func (s *Server) unregisterConnection(conn *Connection) {
	select {
	case s.unregister <- conn:
	case <-s.ctx.Done():
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"games":   s.registry.GameCount(),
		"players": s.registry.PlayerCount(),
	})
}

// connectionsInRoom snapshots the connections playing in a room, so sends
// happen without holding the lock.
func (s *Server) connectionsInRoom(room string) []*Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		if conn.Room() == room {
			conns = append(conns, conn)
		}
	}
	return conns
}

// broadcastToRoom sends a message to every connection in a room.
func (s *Server) broadcastToRoom(room string, msg *Message) {
	for _, conn := range s.connectionsInRoom(room) {
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Debug("broadcast failed", "player", conn.PlayerID(), "error", err)
		}
	}
}
