package domain

import "errors"

var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
	ErrNotPermitted = errors.New("not permitted")
	ErrNotInRoom    = errors.New("user not in the room")
)
