package ws

import (
	"sync"
)

// Hub is one broadcast namespace: the set of live connections plus a
// room-id → connection roster. It satisfies chat.Transport. Sends are
// best-effort; a dead peer never blocks the rest of a broadcast.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Conn            // connID -> conn
	rooms map[string]map[string]Conn // roomID -> connID -> conn
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]Conn),
		rooms: make(map[string]map[string]Conn),
	}
}

// Add registers a connection with the namespace.
func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[c.ID()] = c
}

// Remove drops the connection from the namespace and from every room roster.
func (h *Hub) Remove(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, connID)
	for roomID, rs := range h.rooms {
		delete(rs, connID)
		if len(rs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *Hub) Join(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[connID]
	if !ok {
		return
	}
	rs, ok := h.rooms[roomID]
	if !ok {
		rs = make(map[string]Conn)
		h.rooms[roomID] = rs
	}
	rs[connID] = c
}

func (h *Hub) Leave(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rs, ok := h.rooms[roomID]; ok {
		delete(rs, connID)
		if len(rs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *Hub) ClearRoom(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.rooms, roomID)
}

func (h *Hub) EmitAll(event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.conns {
		_ = c.Send(Message{Event: event, Payload: payload}) // best-effort
	}
}

func (h *Hub) EmitRoom(roomID, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if rs, ok := h.rooms[roomID]; ok {
		for _, c := range rs {
			_ = c.Send(Message{Event: event, Payload: payload})
		}
	}
}

func (h *Hub) EmitConn(connID, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if c, ok := h.conns[connID]; ok {
		_ = c.Send(Message{Event: event, Payload: payload})
	}
}

// Len reports the number of live connections in the namespace.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.conns)
}

// RoomLen reports the roster size of one room.
func (h *Hub) RoomLen(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[roomID])
}
