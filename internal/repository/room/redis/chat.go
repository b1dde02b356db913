package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/watchroom/server/internal/domain"
)

// AppendMessage pushes the message onto the room's history, keeping only the
// newest messagesLimit entries.
func (r repo) AppendMessage(ctx context.Context, roomHash string, msg *domain.ChatMessage) error {
	r.logger.DebugContext(ctx, "redis repo: append message", "room_hash", roomHash, "message_id", msg.Id)
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	pipe := r.rc.TxPipeline()
	messagesKey := r.getMessagesKey(roomHash)
	pipe.RPush(ctx, messagesKey, data)
	pipe.LTrim(ctx, messagesKey, -r.messagesLimit, -1)

	return r.executePipe(ctx, pipe)
}

// GetRecentMessages returns up to limit messages ordered oldest to newest.
func (r repo) GetRecentMessages(ctx context.Context, roomHash string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		return []domain.ChatMessage{}, nil
	}

	raw, err := r.rc.LRange(ctx, r.getMessagesKey(roomHash), int64(-limit), -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]domain.ChatMessage, 0, len(raw))
	for _, data := range raw {
		var msg domain.ChatMessage
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, nil
}
