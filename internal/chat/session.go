package chat

import "github.com/DanteBelNan/sockets-server/internal/domain"

// Session is the server-side state of one live connection: the resolved
// identity plus the rooms the connection is currently joined to. It is
// created when a connection authenticates and destroyed on disconnect.
// Sessions are only ever touched under the coordinator's lock.
type Session struct {
	ConnID string
	User   domain.User
	rooms  map[string]struct{}
}

func newSession(connID string, user domain.User) *Session {
	return &Session{
		ConnID: connID,
		User:   user,
		rooms:  make(map[string]struct{}),
	}
}

func (s *Session) inRoom(roomID string) bool {
	_, ok := s.rooms[roomID]
	return ok
}

// roomIDs returns a stable snapshot of the joined set, safe to iterate while
// the underlying set is being mutated by leave handlers.
func (s *Session) roomIDs() []string {
	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	return ids
}
