package guidance

import (
	"encoding/json"
	"log"
	"net/http"
	"pedestrian-nav-service/internal/domain"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeTimeout = 5 * time.Second
	sendBuffer   = 64
)

// wsMessage is the JSON frame pushed to websocket clients.
type wsMessage struct {
	Type       domain.EventType `json:"type"`
	SessionID  string           `json:"session_id"`
	Generation uint64           `json:"generation,omitempty"`
	Text       string           `json:"text,omitempty"`
	Interrupt  bool             `json:"interrupt,omitempty"`
	Error      string           `json:"error,omitempty"`
	Guidance   *wsGuidance      `json:"guidance,omitempty"`
	At         time.Time        `json:"at"`
}

type wsGuidance struct {
	DistanceToNext    float64 `json:"distance_to_next_m"`
	BearingToNext     float64 `json:"bearing_to_next_deg"`
	Direction         string  `json:"direction"`
	Instruction       string  `json:"instruction"`
	RemainingDistance float64 `json:"remaining_distance_m"`
	CurrentIndex      int     `json:"current_index"`
	Arrived           bool    `json:"arrived"`
}

// Hub fans session events out to websocket clients subscribed per session.
// Each client owns a buffered send queue drained by its own writePump, so a
// slow reader never stalls Publish; a client whose queue is full is dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*client]struct{}
}

type client struct {
	sessionID string
	conn      *websocket.Conn
	send      chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*client]struct{})}
}

// ServeWS upgrades the request and subscribes the connection to sessionID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	c := &client{sessionID: sessionID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(c)
	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.sessionID] == nil {
		h.clients[c.sessionID] = make(map[*client]struct{})
	}
	h.clients[c.sessionID][c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(c)
}

// detachLocked unsubscribes c and closes its queue. Only a client still in
// the map is closed, so the queue is closed exactly once. h.mu must be held.
func (h *Hub) detachLocked(c *client) {
	set, ok := h.clients[c.sessionID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.sessionID)
	}
}

// Clients returns the number of connections subscribed to sessionID.
func (h *Hub) Clients(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[sessionID])
}

// Publish implements ports.EventPublisher.
func (h *Hub) Publish(ev domain.SessionEvent) {
	msg := wsMessage{
		Type:       ev.Type,
		SessionID:  ev.SessionID,
		Generation: ev.Generation,
		Text:       ev.Text,
		Interrupt:  ev.Type == domain.EventSpeak,
		Error:      ev.Error,
		At:         ev.At,
	}
	if ev.Info != nil {
		msg.Guidance = &wsGuidance{
			DistanceToNext:    ev.Info.DistanceToNext,
			BearingToNext:     ev.Info.BearingToNext,
			Direction:         string(ev.Info.Direction),
			Instruction:       ev.Info.Instruction,
			RemainingDistance: ev.Info.RemainingDistance,
			CurrentIndex:      ev.Info.CurrentIndex,
			Arrived:           ev.Info.Arrived,
		}
	}
	h.broadcast(ev.SessionID, msg)
}

func (h *Hub) broadcast(sessionID string, msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ws encode failed session=%s: %v", sessionID, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[sessionID] {
		select {
		case c.send <- data:
		default:
			log.Printf("ws client too slow, dropping session=%s", sessionID)
			h.detachLocked(c)
		}
	}
}

// writePump is the only writer on c.conn. It exits when the queue is closed,
// sending a close frame first, or when a write fails.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
		time.Now().Add(writeTimeout))
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Disconnect closes every client of sessionID. Used when a session ends.
func (h *Hub) Disconnect(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[sessionID] {
		h.detachLocked(c)
	}
}
