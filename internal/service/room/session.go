package room

import (
	"context"

	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/internal/presence"
)

type JoinRoomParams struct {
	RoomHash string
	Conn     *presence.Conn
	User     domain.User
}

type JoinRoomResponse struct {
	State      RoomState
	JoinedUser domain.User
	Occupants  []domain.User
	Conns      []*presence.Conn
	Others     []*presence.Conn
	// UsersCountPersisted is false when the best-effort counter write was
	// skipped (not the user's first connection) or failed.
	UsersCountPersisted bool
}

// JoinRoom registers the connection's presence and returns the snapshot for
// the caller plus the fan-out targets. Counter persistence is best-effort:
// a slow or failed store write must never block the live roster.
func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	room, err := s.getRoom(ctx, params.RoomHash)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	if !room.IsActive {
		return JoinRoomResponse{}, ErrRoomClosed
	}

	first := s.registry.Join(params.RoomHash, params.Conn, params.User)

	persisted := false
	if first {
		if count, err := s.roomRepo.UpdateUsersCount(ctx, params.RoomHash, 1); err != nil {
			s.logger.WarnContext(ctx, "failed to persist users count", "room_hash", params.RoomHash, "error", err)
		} else {
			persisted = true
			room.UsersCount = count
		}
	}
	s.touchRoom(ctx, params.RoomHash)

	s.logger.InfoContext(ctx, "user joined room",
		"room_hash", params.RoomHash,
		"conn_id", params.Conn.Id,
		"user", params.User.DisplayName,
		"first_connection", first,
	)

	return JoinRoomResponse{
		State:               toRoomState(room),
		JoinedUser:          params.User,
		Occupants:           s.registry.Occupants(params.RoomHash),
		Conns:               s.registry.Conns(params.RoomHash),
		Others:              s.registry.ConnsExcept(params.RoomHash, params.Conn.Id),
		UsersCountPersisted: persisted,
	}, nil
}

type LeaveRoomParams struct {
	ConnId string
}

type LeaveRoomResponse struct {
	Left      bool
	RoomHash  string
	User      domain.User
	Occupants []domain.User
	Conns     []*presence.Conn
}

// LeaveRoom unregisters the connection. It is the sole removal path, shared
// by the explicit leave message and the transport disconnect hook, and is a
// no-op for connections that never joined or already left.
func (s service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	result, ok := s.registry.Leave(params.ConnId)
	if !ok {
		return LeaveRoomResponse{}, nil
	}

	if result.LastConnection {
		if _, err := s.roomRepo.UpdateUsersCount(ctx, result.RoomHash, -1); err != nil {
			s.logger.WarnContext(ctx, "failed to persist users count", "room_hash", result.RoomHash, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "user left room",
		"room_hash", result.RoomHash,
		"conn_id", params.ConnId,
		"user", result.User.DisplayName,
		"last_connection", result.LastConnection,
	)

	return LeaveRoomResponse{
		Left:      true,
		RoomHash:  result.RoomHash,
		User:      result.User,
		Occupants: s.registry.Occupants(result.RoomHash),
		Conns:     s.registry.Conns(result.RoomHash),
	}, nil
}

// SyncState is the reconciliation path for clients that suspect drift: a
// fresh snapshot for the requester only.
func (s service) SyncState(ctx context.Context, roomHash string) (RoomState, error) {
	return s.GetRoomState(ctx, roomHash)
}
