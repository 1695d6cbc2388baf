package http

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type SendMessageRequest struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

type MessageItem struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type MessagesResponse struct {
	Items      []MessageItem `json:"items"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

type RoomItem struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	UserCount       int       `json:"userCount"`
	CreatedAt       time.Time `json:"createdAt"`
	CreatorUsername string    `json:"creatorUsername,omitempty"`
}

type RoomsResponse struct {
	Items []RoomItem `json:"items"`
}
