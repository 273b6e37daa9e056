package snapshot

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/coursedesk/backend/internal/model/registry"
	chatservice "github.com/coursedesk/backend/internal/service/chat"
)

// Snapshot is the lightweight state pushed to connected clients: the course
// list plus the course ids the session's student is enrolled in.
type Snapshot struct {
	Courses           []registry.Course `json:"courses"`
	EnrolledCourseIDs []string          `json:"enrolledCourseIds"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type client struct {
	sessionID string
	// Serializes writes: snapshots and pings come from different goroutines.
	mu sync.Mutex
}

// Handler pushes registry snapshots to websocket subscribers whenever the
// store changes.
type Handler struct {
	store    *registry.Store
	chatSvc  *chatservice.Service
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]*client
}

// New creates the snapshot handler and hooks it into store change
// notifications.
func New(store *registry.Store, chatSvc *chatservice.Service) *Handler {
	h := &Handler{
		store:   store,
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(map[*websocket.Conn]*client),
	}
	store.SetOnChange(h.broadcast)
	return h
}

// RegisterRoutes registers the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] snapshot subscriber connected session=%s", sessionID)

	c := &client{sessionID: sessionID}
	h.mu.Lock()
	h.conns[conn] = c
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go h.pingLoop(ctx, conn, c)

	h.send(conn, c)

	// Subscribers only listen; the read loop exists to observe the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}
}

// broadcast pushes a fresh snapshot to every subscriber.
func (h *Handler) broadcast() {
	h.mu.Lock()
	targets := make(map[*websocket.Conn]*client, len(h.conns))
	for conn, c := range h.conns {
		targets[conn] = c
	}
	h.mu.Unlock()

	for conn, c := range targets {
		h.send(conn, c)
	}
}

func (h *Handler) send(conn *websocket.Conn, c *client) {
	snap := h.buildSnapshot(c.sessionID)

	msg := outgoingMessage{
		Type:      "snapshot",
		SessionID: c.sessionID,
		Data:      snap,
		Timestamp: time.Now().Unix(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write snapshot failed session=%s: %v", c.sessionID, err)
	}
}

func (h *Handler) buildSnapshot(sessionID string) Snapshot {
	snap := Snapshot{
		Courses:           h.store.ListCourses(),
		EnrolledCourseIDs: []string{},
	}

	session, err := h.chatSvc.GetSession(context.Background(), sessionID)
	if err != nil || session.StudentID == "" {
		return snap
	}

	ids := h.store.EnrolledCourseIDs(session.StudentID)
	snap.EnrolledCourseIDs = lo.Ternary(ids != nil, ids, []string{})
	return snap
}

func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
