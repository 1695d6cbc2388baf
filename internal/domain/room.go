package domain

import "time"

// Room is an ephemeral chat room. It lives only in memory for the lifetime of
// the process; id, name and creator are immutable after creation.
type Room struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	UserCount       int       `json:"userCount"`
	CreatedAt       time.Time `json:"createdAt"`
	CreatorID       string    `json:"creatorId,omitempty"`
	CreatorUsername string    `json:"creatorUsername,omitempty"`
}
