package ws

import (
	"encoding/json"
	"log"
	"sync"

	"promptparty/internal/model"
)

// Message is the push envelope format.
type Message struct {
	Kind    model.EventKind `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans push events out to connected players. It implements
// service.Notifier; delivery is best effort and a slow consumer just
// drops messages.
type Hub struct {
	// gameID -> playerID -> connection
	conns map[string]map[string]*Connection

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	push       chan *pushMessage
}

// Connection is one player's WebSocket attachment to a game.
type Connection struct {
	GameID   string
	PlayerID string
	Send     chan []byte
	Hub      *Hub
}

type pushMessage struct {
	gameID    string
	playerIDs []string // nil means every connected player in the game
	message   *Message
}

func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		push:       make(chan *pushMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.GameID] == nil {
				h.conns[conn.GameID] = make(map[string]*Connection)
			}
			h.conns[conn.GameID][conn.PlayerID] = conn
			h.mu.Unlock()
			log.Printf("player %s connected to game %s", conn.PlayerID, conn.GameID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if players, ok := h.conns[conn.GameID]; ok {
				if existing, ok := players[conn.PlayerID]; ok && existing == conn {
					delete(players, conn.PlayerID)
					close(conn.Send)
					log.Printf("player %s disconnected from game %s", conn.PlayerID, conn.GameID)
				}
				if len(players) == 0 {
					delete(h.conns, conn.GameID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.push:
			data, err := json.Marshal(msg.message)
			if err != nil {
				log.Printf("failed to marshal push message: %v", err)
				continue
			}
			h.mu.RLock()
			players := h.conns[msg.gameID]
			if msg.playerIDs == nil {
				for _, conn := range players {
					h.trySend(conn, data)
				}
			} else {
				for _, pid := range msg.playerIDs {
					if conn, ok := players[pid]; ok {
						h.trySend(conn, data)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) trySend(conn *Connection, data []byte) {
	select {
	case conn.Send <- data:
	default:
		// Buffer full, drop the message.
	}
}

// Register adds a connection.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Notify sends an event to specific players (implements service.Notifier).
func (h *Hub) Notify(gameID string, playerIDs []string, kind model.EventKind, payload interface{}) {
	if playerIDs == nil {
		playerIDs = []string{}
	}
	h.enqueue(gameID, playerIDs, kind, payload)
}

// NotifyGame sends an event to every connected player in the game
// (implements service.Notifier).
func (h *Hub) NotifyGame(gameID string, kind model.EventKind, payload interface{}) {
	h.enqueue(gameID, nil, kind, payload)
}

func (h *Hub) enqueue(gameID string, playerIDs []string, kind model.EventKind, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal %s payload: %v", kind, err)
		return
	}
	h.push <- &pushMessage{
		gameID:    gameID,
		playerIDs: playerIDs,
		message:   &Message{Kind: kind, Payload: data},
	}
}
