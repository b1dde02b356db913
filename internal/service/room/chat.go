package room

import (
	"context"
	"fmt"

	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/internal/presence"
)

type SendChatMessageParams struct {
	RoomHash string
	Content  string
	Sender   domain.User
}

type SendChatMessageResponse struct {
	Message ChatMessage
	// Conns includes the sender: clients render from the authoritative echo.
	Conns []*presence.Conn
}

func (s service) SendChatMessage(ctx context.Context, params *SendChatMessageParams) (SendChatMessageResponse, error) {
	room, err := s.getRoom(ctx, params.RoomHash)
	if err != nil {
		return SendChatMessageResponse{}, err
	}

	msg, err := domain.NewChatMessage(room.Id, params.Sender, params.Content)
	if err != nil {
		return SendChatMessageResponse{}, err
	}

	if err := s.chatRepo.AppendMessage(ctx, params.RoomHash, msg); err != nil {
		return SendChatMessageResponse{}, fmt.Errorf("failed to append message: %w", err)
	}
	s.touchRoom(ctx, params.RoomHash)

	return SendChatMessageResponse{
		Message: toChatMessage(msg),
		Conns:   s.registry.Conns(params.RoomHash),
	}, nil
}

func (s service) RecentMessages(ctx context.Context, roomHash string, limit int) ([]ChatMessage, error) {
	if _, err := s.getRoom(ctx, roomHash); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > s.chatHistoryLimit {
		limit = s.chatHistoryLimit
	}

	messages, err := s.chatRepo.GetRecentMessages(ctx, roomHash, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}

	result := make([]ChatMessage, 0, len(messages))
	for i := range messages {
		result = append(result, toChatMessage(&messages[i]))
	}

	return result, nil
}
