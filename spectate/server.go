package spectate

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"snake-arena/game"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	clientBuffer = 8
	writeTimeout = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // read-only stream, any origin may watch
	},
}

// Message is one frame sent to viewers
type Message struct {
	Type   string         `json:"type" msgpack:"type"`
	State  *game.Snapshot `json:"state,omitempty" msgpack:"state,omitempty"`
	Events []game.Event   `json:"events,omitempty" msgpack:"events,omitempty"`
}

// Format is the wire encoding requested by a viewer
type Format int

const (
	FormatJSON Format = iota
	FormatMsgpack
)

// ParseFormat reads the ?format= query value. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "msgpack":
		return FormatMsgpack, nil
	default:
		return FormatJSON, fmt.Errorf("unknown format %q", s)
	}
}

// Encode serialises m. JSON goes out as a text frame, msgpack as a binary frame.
func Encode(m Message, f Format) (int, []byte, error) {
	if f == FormatMsgpack {
		data, err := msgpack.Marshal(m)
		if err != nil {
			return 0, nil, fmt.Errorf("encode msgpack: %w", err)
		}
		return websocket.BinaryMessage, data, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return 0, nil, fmt.Errorf("encode json: %w", err)
	}
	return websocket.TextMessage, data, nil
}

type client struct {
	conn   *websocket.Conn
	format Format
	send   chan Message
}

// Server streams game snapshots to websocket viewers. Viewers cannot send input.
type Server struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	latest  *Message
	closed  bool
	http    *http.Server
}

func NewServer() *Server {
	return &Server{
		clients: make(map[*client]struct{}),
	}
}

// ListenAndServe serves the stream on addr at /ws until Close is called
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)

	s.mu.Lock()
	s.http = &http.Server{Addr: addr, Handler: mux}
	srv := s.http
	s.mu.Unlock()

	log.Printf("Spectator stream listening on %s/ws", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("spectate server: %w", err)
	}
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	format, err := ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	c := &client{conn: conn, format: format, send: make(chan Message, clientBuffer)}
	if !s.register(c) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server closing"))
		conn.Close()
		return
	}
	log.Println("New spectator from:", r.RemoteAddr)

	// Viewers never send anything meaningful; reading detects disconnects
	go func() {
		defer s.unregister(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.writeLoop(c)
}

func (s *Server) register(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.clients[c] = struct{}{}
	if s.latest != nil {
		c.send <- *s.latest
	}
	return true
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Server) writeLoop(c *client) {
	defer c.conn.Close()
	for m := range c.send {
		kind, data, err := Encode(m, c.format)
		if err != nil {
			log.Println("Encode error:", err)
			continue
		}
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(kind, data); err != nil {
			log.Println("Write error:", err)
			s.unregister(c)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Broadcast queues a frame for every viewer. Slow viewers drop frames rather than stall the game loop.
func (s *Server) Broadcast(snap game.Snapshot, events []game.Event) {
	m := Message{Type: "state", State: &snap, Events: events}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.latest = &m
	for c := range s.clients {
		select {
		case c.send <- m:
		default:
		}
	}
}

// Viewers returns the number of connected spectators
func (s *Server) Viewers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close disconnects every viewer and stops the listener, if any
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
	srv := s.http
	s.mu.Unlock()

	if srv != nil {
		if err := srv.Close(); err != nil {
			return fmt.Errorf("close spectate server: %w", err)
		}
	}
	return nil
}
