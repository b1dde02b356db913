package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/internal/presence"
	roomRepo "github.com/watchroom/server/internal/repository/room"
	"github.com/watchroom/server/pkg/ytdata"
)

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomClosed           = errors.New("room is closed")
	ErrWrongPassword        = errors.New("wrong password")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrPlaylistLimitReached = errors.New("playlist limit reached")
	ErrUnknownPlayerAction  = errors.New("unknown player action")
)

// createRoomAttempts bounds retries on public hash collisions.
const createRoomAttempts = 3

type iRoomRepo interface {
	Add(context.Context, *domain.Room) error
	GetByHash(context.Context, string) (*domain.Room, error)
	GetActive(context.Context) ([]*domain.Room, error)
	Update(context.Context, *domain.Room) error
	Delete(context.Context, string) error
	MoveCursor(context.Context, *roomRepo.MoveCursorParams) (int, bool, error)
	UpdateUsersCount(ctx context.Context, roomHash string, delta int) (int, error)
	Touch(ctx context.Context, roomHash string, at time.Time) error
}

type iChatRepo interface {
	AppendMessage(ctx context.Context, roomHash string, msg *domain.ChatMessage) error
	GetRecentMessages(ctx context.Context, roomHash string, limit int) ([]domain.ChatMessage, error)
}

type iPresence interface {
	Join(roomHash string, conn *presence.Conn, user domain.User) bool
	Leave(connId string) (presence.LeaveResult, bool)
	RoomOf(connId string) (string, bool)
	Occupants(roomHash string) []domain.User
	Conns(roomHash string) []*presence.Conn
	ConnsExcept(roomHash, connId string) []*presence.Conn
}

type iVideoResolver interface {
	Resolve(ctx context.Context, url string) ([]ytdata.Video, error)
}

type Config struct {
	PlaylistLimit    int
	ChatHistoryLimit int
}

type service struct {
	roomRepo iRoomRepo
	chatRepo iChatRepo
	registry iPresence
	resolver iVideoResolver
	logger   *slog.Logger

	playlistLimit    int
	chatHistoryLimit int
}

func NewService(roomRepo iRoomRepo, chatRepo iChatRepo, registry iPresence, resolver iVideoResolver, cfg *Config, logger *slog.Logger) *service {
	return &service{
		roomRepo:         roomRepo,
		chatRepo:         chatRepo,
		registry:         registry,
		resolver:         resolver,
		logger:           logger,
		playlistLimit:    cfg.PlaylistLimit,
		chatHistoryLimit: cfg.ChatHistoryLimit,
	}
}

func (s service) getRoom(ctx context.Context, roomHash string) (*domain.Room, error) {
	room, err := s.roomRepo.GetByHash(ctx, roomHash)
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

// touchRoom refreshes the activity timestamp. Failures are logged and
// swallowed: activity tracking must never fail the operation that caused it.
func (s service) touchRoom(ctx context.Context, roomHash string) {
	if err := s.roomRepo.Touch(ctx, roomHash, time.Now()); err != nil {
		s.logger.WarnContext(ctx, "failed to touch room", "room_hash", roomHash, "error", err)
	}
}
