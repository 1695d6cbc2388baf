package chat

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DanteBelNan/sockets-server/internal/domain"
)

// Coordinator drives the private-room namespace: it owns the sessions, keeps
// the Registry and the transport roster bidirectionally consistent, and fans
// events out through the Transport. Every mutating handler runs under one
// mutex so that concurrent joins, leaves and disconnects cannot corrupt
// member counts or leave a session out of sync with its rooms.
type Coordinator struct {
	mu       sync.Mutex
	registry *Registry
	tr       Transport
	sessions map[string]*Session
}

func NewCoordinator(registry *Registry, tr Transport) *Coordinator {
	return &Coordinator{
		registry: registry,
		tr:       tr,
		sessions: make(map[string]*Session),
	}
}

// Connect registers an authenticated connection. No room event is dispatched
// for a connection that was never registered.
func (c *Coordinator) Connect(connID string, user domain.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions[connID] = newSession(connID, user)
	slog.Info("private chat connected", "conn", connID, "user", user.Username)
}

// CreateRoom inserts a room and announces it to the whole namespace. A
// duplicate id is reported to the requester only.
func (c *Coordinator) CreateRoom(connID, roomID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[connID]
	if !ok {
		return
	}
	if roomID == "" {
		c.tr.EmitConn(connID, EventError, ErrorPayload{Message: "room id is required"})
		return
	}

	room, err := c.registry.Create(roomID, name, sess.User)
	if err != nil {
		c.tr.EmitConn(connID, EventError, ErrorPayload{Message: "room already exists"})
		return
	}

	c.tr.EmitAll(EventRoomCreated, room)
	slog.Info("room created", "room", roomID, "name", name, "creator", sess.User.Username)
}

// GetRooms sends the current room list to the requesting connection only.
func (c *Coordinator) GetRooms(connID string) {
	c.tr.EmitConn(connID, EventRoomsList, c.registry.List())
}

// JoinRoom moves the connection into roomID. A session holds at most one room
// at a time: any room it is currently in is left first, exactly as if a leave
// event had fired for each.
func (c *Coordinator) JoinRoom(connID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[connID]
	if !ok {
		return
	}

	for _, id := range sess.roomIDs() {
		c.leaveLocked(sess, id)
	}

	if _, err := c.registry.Get(roomID); err != nil {
		// the room may have been auto-vacuumed between list and join
		c.tr.EmitConn(connID, EventError, ErrorPayload{Message: "room does not exist"})
		return
	}

	c.tr.Join(roomID, connID)
	room, err := c.registry.Increment(roomID)
	if err != nil {
		c.tr.Leave(roomID, connID)
		c.tr.EmitConn(connID, EventError, ErrorPayload{Message: "room does not exist"})
		return
	}
	sess.rooms[roomID] = struct{}{}

	c.tr.EmitRoom(roomID, EventUserJoined, MemberEvent{
		RoomID:    roomID,
		UserID:    sess.User.ID,
		Username:  sess.User.Username,
		Count:     room.UserCount,
		Timestamp: time.Now(),
	})
	slog.Info("user joined room", "room", roomID, "user", sess.User.Username, "count", room.UserCount)
}

// LeaveRoom removes the connection from roomID. Leaving a room the session is
// not in, or one that no longer exists, is silently tolerated: a leave may
// race a delete.
func (c *Coordinator) LeaveRoom(connID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[connID]
	if !ok {
		return
	}
	c.leaveLocked(sess, roomID)
}

// leaveLocked is the single leave path, shared by leave-room, join-room's
// implicit leave and disconnect. Caller holds c.mu. An empty room is
// auto-vacuumed and its deletion announced to the whole namespace.
func (c *Coordinator) leaveLocked(sess *Session, roomID string) {
	if !sess.inRoom(roomID) {
		return
	}

	delete(sess.rooms, roomID)
	c.tr.Leave(roomID, sess.ConnID)

	room, err := c.registry.Decrement(roomID)
	if err != nil {
		return
	}

	if room.UserCount == 0 {
		if _, err := c.registry.Delete(roomID); err == nil {
			c.tr.EmitAll(EventRoomDeleted, roomID)
			slog.Info("room auto-deleted", "room", roomID)
		}
		return
	}

	c.tr.EmitRoom(roomID, EventUserLeft, MemberEvent{
		RoomID:    roomID,
		UserID:    sess.User.ID,
		Username:  sess.User.Username,
		Count:     room.UserCount,
		Timestamp: time.Now(),
	})
	slog.Info("user left room", "room", roomID, "user", sess.User.Username, "count", room.UserCount)
}

// DeleteRoom removes roomID on behalf of its creator. Members get the rich
// payload first, then the whole namespace gets the bare room id.
func (c *Coordinator) DeleteRoom(connID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[connID]
	if !ok {
		return
	}

	room, err := c.registry.Get(roomID)
	if err != nil {
		c.tr.EmitConn(connID, EventError, ErrorPayload{Message: "room does not exist"})
		return
	}
	if room.CreatorID != "" && room.CreatorID != sess.User.ID {
		c.tr.EmitConn(connID, EventError, ErrorPayload{Message: "you do not have permission to delete this room"})
		return
	}

	c.tr.EmitRoom(roomID, EventRoomDeleted, RoomDeletedNotice{
		RoomID:    roomID,
		Message:   fmt.Sprintf("This room has been deleted by %s", sess.User.Username),
		DeletedBy: sess.User,
		Timestamp: time.Now(),
	})

	for _, other := range c.sessions {
		delete(other.rooms, roomID)
	}
	c.tr.ClearRoom(roomID)

	if _, err := c.registry.Delete(roomID); err != nil {
		return
	}
	c.tr.EmitAll(EventRoomDeleted, roomID)
	slog.Info("room deleted", "room", roomID, "by", sess.User.Username)
}

// ChatMessage fans a message out to the members of roomID. A message from a
// connection that is not a member is dropped without a reply, so that room
// membership is not leaked to outsiders.
func (c *Coordinator) ChatMessage(connID, roomID, username, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[connID]
	if !ok || !sess.inRoom(roomID) {
		return
	}

	c.tr.EmitRoom(roomID, EventChatMessage, RoomMessage{
		ID:        connID,
		UserID:    sess.User.ID,
		Username:  username,
		Message:   message,
		Timestamp: time.Now(),
		Room:      roomID,
	})
}

// Disconnect tears the session down, leaving every joined room exactly once.
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, ok := c.sessions[connID]
	if !ok {
		return
	}

	for _, id := range sess.roomIDs() {
		c.leaveLocked(sess, id)
	}
	delete(c.sessions, connID)
	slog.Info("private chat disconnected", "conn", connID, "user", sess.User.Username)
}
