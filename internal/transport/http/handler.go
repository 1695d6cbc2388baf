package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/DanteBelNan/sockets-server/internal/chat"
	"github.com/DanteBelNan/sockets-server/internal/postgres"
	"github.com/DanteBelNan/sockets-server/internal/service"
	httpmw "github.com/DanteBelNan/sockets-server/internal/transport/http/middleware"
	"github.com/DanteBelNan/sockets-server/pkg/logger"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	historySvc *service.HistoryService
	registry   *chat.Registry
}

func NewHandler(history *service.HistoryService, registry *chat.Registry) *Handler {
	return &Handler{
		historySvc: history,
		registry:   registry,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logError logs with trace correlation attrs when the request carries an active span.
func logError(ctx context.Context, msg string, err error) {
	attrs := append(logger.AttrsFromCtx(ctx), slog.Any("err", err))
	slog.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

// GET /api/rooms
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.registry.List()
	resp := RoomsResponse{Items: make([]RoomItem, 0, len(rooms))}
	for _, rm := range rooms {
		resp.Items = append(resp.Items, RoomItem{
			ID:              rm.ID,
			Name:            rm.Name,
			UserCount:       rm.UserCount,
			CreatedAt:       rm.CreatedAt,
			CreatorUsername: rm.CreatorUsername,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /api/rooms/{id}/messages?after=&limit=
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	if h.historySvc == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "history disabled"})
		return
	}
	roomID := chi.URLParam(r, "id")
	after := r.URL.Query().Get("after")
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	items, next, err := h.historySvc.History(r.Context(), roomID, after, limit)
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCursor) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
			return
		}
		logError(r.Context(), "handler.GetMessages", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := MessagesResponse{Items: make([]MessageItem, 0, len(items)), NextCursor: next}
	for _, m := range items {
		resp.Items = append(resp.Items, MessageItem{
			ID:        m.ID,
			RoomID:    m.RoomID,
			Username:  m.Username,
			Message:   m.Text,
			CreatedAt: m.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// POST /api/messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	if h.historySvc == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: "history disabled"})
		return
	}
	user, ok := httpmw.UserFromCtx(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing identity"})
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	if req.RoomID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "roomId is required"})
		return
	}

	msg, err := h.historySvc.Save(r.Context(), req.RoomID, user.Username, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage), errors.Is(err, service.ErrMessageTooLong):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			logError(r.Context(), "handler.SendMessage", err)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, MessageItem{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		Username:  msg.Username,
		Message:   msg.Text,
		CreatedAt: msg.CreatedAt,
	})
}
