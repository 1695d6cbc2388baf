package domain

import "time"

// ChatMessage is a persisted history entry for a room.
type ChatMessage struct {
	ID        string    `db:"id"`
	RoomID    string    `db:"room_id"`
	Username  string    `db:"username"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}
