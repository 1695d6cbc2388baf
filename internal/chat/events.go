package chat

import (
	"time"

	"github.com/DanteBelNan/sockets-server/internal/domain"
)

// Wire event names. Inbound events arrive over the private-room namespace,
// outbound events go to either a single connection, a room, or the whole
// namespace.
const (
	// inbound
	EventCreateRoom  = "create room"
	EventGetRooms    = "get rooms"
	EventJoinRoom    = "join room"
	EventLeaveRoom   = "leave room"
	EventDeleteRoom  = "delete room"
	EventChatMessage = "chat message"

	// outbound
	EventRoomCreated      = "room created"
	EventRoomsList        = "rooms list"
	EventError            = "error"
	EventUserJoined       = "user joined"
	EventUserLeft         = "user left"
	EventRoomDeleted      = "room deleted"
	EventUserConnected    = "user connected"
	EventUserDisconnected = "user disconnected"
	EventUserCount        = "user count"
)

type ErrorPayload struct {
	Message string `json:"message"`
}

// MemberEvent announces a join or leave to the members of a room.
type MemberEvent struct {
	RoomID    string    `json:"roomId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomDeletedNotice is the rich, member-scoped shape of "room deleted". The
// namespace-scoped shape is the bare room id.
type RoomDeletedNotice struct {
	RoomID    string      `json:"roomId"`
	Message   string      `json:"message"`
	DeletedBy domain.User `json:"deletedBy"`
	Timestamp time.Time   `json:"timestamp"`
}

// RoomMessage is a chat message scoped to a private room.
type RoomMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Room      string    `json:"room"`
}

// PresenceEvent announces a connect or disconnect on the general namespace.
type PresenceEvent struct {
	Username  string    `json:"username"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// GeneralMessage is a chat message on the general namespace.
type GeneralMessage struct {
	Username  string    `json:"username"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	SenderID  string    `json:"senderId"`
	Timestamp time.Time `json:"timestamp"`
}
