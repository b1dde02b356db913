package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/validator"
	"github.com/watchroom/server/pkg/wsrouter"
)

type iRoomService interface {
	// control plane
	CreateRoom(context.Context, *room.CreateRoomParams) (room.Room, error)
	GetActiveRooms(context.Context) ([]room.Room, error)
	GetRoomByHash(context.Context, string) (room.Room, error)
	GetRoomState(context.Context, string) (room.RoomState, error)
	CheckRoomPassword(context.Context, *room.CheckRoomPasswordParams) (room.RoomState, error)
	CloseRoom(context.Context, *room.CloseRoomParams) error
	DeleteRoom(context.Context, *room.DeleteRoomParams) error
	GetPlaylist(context.Context, string) ([]room.PlaylistItem, error)
	RecentMessages(ctx context.Context, roomHash string, limit int) ([]room.ChatMessage, error)
	// session
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) (room.LeaveRoomResponse, error)
	SyncState(context.Context, string) (room.RoomState, error)
	HandlePlayerAction(context.Context, *room.HandlePlayerActionParams) (room.HandlePlayerActionResponse, error)
	JumpToVideo(context.Context, *room.JumpToVideoParams) (room.JumpToVideoResponse, error)
	SendChatMessage(context.Context, *room.SendChatMessageParams) (room.SendChatMessageResponse, error)
	AddVideo(context.Context, *room.AddVideoParams) (room.AddVideoResponse, error)
	AddPlaylistByUrl(context.Context, *room.AddPlaylistByUrlParams) (room.AddPlaylistByUrlResponse, error)
	RemoveVideo(context.Context, *room.RemoveVideoParams) (room.RemoveVideoResponse, error)
	ClearPlaylist(context.Context, *room.ClearPlaylistParams) (room.ClearPlaylistResponse, error)
}

type iIdentityResolver interface {
	Resolve(token, fallbackName string) (domain.User, error)
}

type controller struct {
	roomService iRoomService
	identity    iIdentityResolver
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	logger      *slog.Logger
}

func NewController(roomService iRoomService, identity iIdentityResolver, logger *slog.Logger) *controller {
	c := controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		identity:    identity,
		validate:    validator.NewValidator(),
		logger:      logger,
	}
	c.wsmux = c.getWSRouter()

	return &c
}
