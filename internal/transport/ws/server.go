package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DanteBelNan/sockets-server/internal/auth"
	"github.com/DanteBelNan/sockets-server/internal/chat"
	"github.com/DanteBelNan/sockets-server/internal/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server upgrades HTTP requests into namespace connections. A connection
// authenticates exactly once, during the handshake; an invalid token is
// rejected with 401 before the upgrade and never touches chat state.
type Server struct {
	upgrader websocket.Upgrader
	verifier auth.Verifier

	generalHub *Hub
	privateHub *Hub
	presence   *chat.Presence
	coord      *chat.Coordinator

	pingEvery time.Duration
}

func NewServer(verifier auth.Verifier, generalHub, privateHub *Hub, presence *chat.Presence, coord *chat.Coordinator) *Server {
	return &Server{
		verifier:   verifier,
		generalHub: generalHub,
		privateHub: privateHub,
		presence:   presence,
		coord:      coord,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// WS endpoint: GET /ws/chat?access_token=...
func (s *Server) HandleGeneralWS(w http.ResponseWriter, r *http.Request) {
	user, c, ok := s.accept(w, r, s.generalHub)
	if !ok {
		return
	}

	s.presence.Connect(c.id, user)

	go s.writeLoop(c)
	s.readLoop(c, func(msg Message) {
		if msg.Event != chat.EventChatMessage {
			return
		}
		var p GeneralMessagePayload
		if decode(msg.Payload, &p) == nil {
			s.presence.Message(c.id, user, p.Username, p.Message)
		}
	})

	s.generalHub.Remove(c.id)
	s.presence.Disconnect(c.id, user)
	_ = c.Close()
}

// WS endpoint: GET /ws/private?access_token=...
func (s *Server) HandlePrivateWS(w http.ResponseWriter, r *http.Request) {
	user, c, ok := s.accept(w, r, s.privateHub)
	if !ok {
		return
	}

	s.coord.Connect(c.id, user)

	go s.writeLoop(c)
	s.readLoop(c, func(msg Message) {
		switch msg.Event {
		case chat.EventCreateRoom:
			var p CreateRoomPayload
			if decode(msg.Payload, &p) == nil {
				s.coord.CreateRoom(c.id, strings.TrimSpace(p.ID), p.Name)
			}
		case chat.EventGetRooms:
			s.coord.GetRooms(c.id)
		case chat.EventJoinRoom:
			if roomID, ok := roomIDPayload(msg.Payload); ok {
				s.coord.JoinRoom(c.id, roomID)
			}
		case chat.EventLeaveRoom:
			if roomID, ok := roomIDPayload(msg.Payload); ok {
				s.coord.LeaveRoom(c.id, roomID)
			}
		case chat.EventDeleteRoom:
			if roomID, ok := roomIDPayload(msg.Payload); ok {
				s.coord.DeleteRoom(c.id, roomID)
			}
		case chat.EventChatMessage:
			var p RoomMessagePayload
			if decode(msg.Payload, &p) == nil {
				s.coord.ChatMessage(c.id, p.RoomID, p.Username, p.Message)
			}
		default:
			// out-of-protocol events are ignored, never fatal
		}
	})

	s.privateHub.Remove(c.id)
	s.coord.Disconnect(c.id)
	_ = c.Close()
}

// accept verifies the handshake token, upgrades the connection and registers
// it with the namespace hub.
func (s *Server) accept(w http.ResponseWriter, r *http.Request, hub *Hub) (domain.User, *wsConn, bool) {
	token := strings.TrimSpace(r.URL.Query().Get("access_token"))
	user, err := s.verifier.Verify(token)
	if err != nil {
		slog.Warn("ws auth failed", "err", err)
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return domain.User{}, nil, false
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return domain.User{}, nil, false
	}

	c := newWsConn(conn, uuid.NewString())
	hub.Add(c)

	return user, c, true
}

func (s *Server) readLoop(c *wsConn, dispatch func(Message)) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		dispatch(msg)
	}
}

func (s *Server) writeLoop(c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-c.closed:
			return
		}
	}
}

// roomIDPayload accepts both a bare string payload and {"roomId": "..."}.
func roomIDPayload(payload any) (string, bool) {
	if s, ok := payload.(string); ok {
		return s, s != ""
	}
	var p struct {
		RoomID string `json:"roomId"`
	}
	if decode(payload, &p) == nil && p.RoomID != "" {
		return p.RoomID, true
	}
	return "", false
}
