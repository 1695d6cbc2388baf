package chat

import (
	"log/slog"
	"sync"
	"time"

	"github.com/DanteBelNan/sockets-server/internal/domain"
)

// Presence is the general namespace: a single process-wide counter of
// connected users and namespace-wide fan-out of connect, disconnect and chat
// events. No rooms, no persistence.
type Presence struct {
	mu        sync.Mutex
	connected int
	tr        Transport
}

func NewPresence(tr Transport) *Presence {
	return &Presence{tr: tr}
}

// Connect counts the user in and announces it. The count broadcast goes out
// on every change.
func (p *Presence) Connect(connID string, user domain.User) {
	p.mu.Lock()
	p.connected++
	n := p.connected
	p.mu.Unlock()

	p.tr.EmitAll(EventUserCount, n)
	p.tr.EmitAll(EventUserConnected, PresenceEvent{
		Username:  user.Username,
		UserID:    user.ID,
		Timestamp: time.Now(),
	})
	slog.Info("general chat connected", "conn", connID, "user", user.Username, "count", n)
}

func (p *Presence) Disconnect(connID string, user domain.User) {
	p.mu.Lock()
	if p.connected > 0 {
		p.connected--
	}
	n := p.connected
	p.mu.Unlock()

	p.tr.EmitAll(EventUserCount, n)
	p.tr.EmitAll(EventUserDisconnected, PresenceEvent{
		Username:  user.Username,
		UserID:    user.ID,
		Timestamp: time.Now(),
	})
	slog.Info("general chat disconnected", "conn", connID, "user", user.Username, "count", n)
}

// Message relays a general chat message to everyone. The username comes from
// the payload, the user id from the verified identity.
func (p *Presence) Message(connID string, user domain.User, username, message string) {
	p.tr.EmitAll(EventChatMessage, GeneralMessage{
		Username:  username,
		UserID:    user.ID,
		Message:   message,
		SenderID:  connID,
		Timestamp: time.Now(),
	})
}

// Connected reports the current counter value.
func (p *Presence) Connected() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.connected
}
