package chat

import (
	"sync"
	"time"

	"github.com/DanteBelNan/sockets-server/internal/domain"
)

// Registry is the authoritative in-memory map of live rooms. Rooms are
// volatile: the registry starts empty and its contents die with the process.
// All methods are safe for concurrent use; returned rooms are copies.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*domain.Room)}
}

// Create inserts a room with zero members. An existing id is rejected, never
// overwritten.
func (r *Registry) Create(id, name string, creator domain.User) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[id]; ok {
		return domain.Room{}, domain.ErrRoomExists
	}

	room := &domain.Room{
		ID:              id,
		Name:            name,
		UserCount:       0,
		CreatedAt:       time.Now(),
		CreatorID:       creator.ID,
		CreatorUsername: creator.Username,
	}
	r.rooms[id] = room

	return *room, nil
}

func (r *Registry) Get(id string) (domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return *room, nil
}

// List returns a snapshot of all live rooms in no particular order.
func (r *Registry) List() []domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, *room)
	}
	return out
}

// Delete removes the room and returns its last state.
func (r *Registry) Delete(id string) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	delete(r.rooms, id)
	return *room, nil
}

// Increment bumps the member count and returns the updated room.
func (r *Registry) Increment(id string) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	room.UserCount++
	return *room, nil
}

// Decrement lowers the member count, never below zero, and returns the
// updated room.
func (r *Registry) Decrement(id string) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	if room.UserCount > 0 {
		room.UserCount--
	}
	return *room, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
