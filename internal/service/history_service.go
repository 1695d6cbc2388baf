package service

import (
	"context"
	"errors"
	"strings"

	"github.com/DanteBelNan/sockets-server/internal/domain"
	"github.com/DanteBelNan/sockets-server/internal/postgres"
)

var (
	ErrEmptyMessage   = errors.New("empty message")
	ErrMessageTooLong = errors.New("message too long")
)

const maxMessageLen = 4000

// HistoryService validates and stores historical messages over the repo.
type HistoryService struct {
	messageRepo *postgres.MessageRepository
}

func NewHistoryService(messageRepo *postgres.MessageRepository) *HistoryService {
	return &HistoryService{messageRepo: messageRepo}
}

func (s *HistoryService) Save(ctx context.Context, roomID, username, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if len(text) > maxMessageLen {
		return nil, ErrMessageTooLong
	}
	return s.messageRepo.Save(ctx, roomID, username, text)
}

func (s *HistoryService) History(ctx context.Context, roomID, after string, limit int) ([]domain.ChatMessage, string, error) {
	return s.messageRepo.History(ctx, roomID, after, limit)
}
