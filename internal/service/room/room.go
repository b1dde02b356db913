package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/watchroom/server/internal/domain"
	roomRepo "github.com/watchroom/server/internal/repository/room"
)

type CreateRoomParams struct {
	Name     string
	Password string
	Owner    domain.User
}

func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (Room, error) {
	for attempt := 0; attempt < createRoomAttempts; attempt++ {
		room, err := domain.NewRoom(params.Name, params.Owner, params.Password)
		if err != nil {
			return Room{}, err
		}

		if err := s.roomRepo.Add(ctx, room); err != nil {
			if errors.Is(err, roomRepo.ErrRoomAlreadyExists) {
				s.logger.WarnContext(ctx, "room hash collision, retrying", "room_hash", room.Hash)
				continue
			}
			return Room{}, fmt.Errorf("failed to add room: %w", err)
		}

		s.logger.InfoContext(ctx, "room created", "room_hash", room.Hash, "owner", params.Owner.DisplayName)
		return toRoom(room), nil
	}

	return Room{}, errors.New("failed to generate a unique room hash")
}

func (s service) GetActiveRooms(ctx context.Context) ([]Room, error) {
	rooms, err := s.roomRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active rooms: %w", err)
	}

	result := make([]Room, 0, len(rooms))
	for _, room := range rooms {
		result = append(result, toRoom(room))
	}

	return result, nil
}

func (s service) GetRoomByHash(ctx context.Context, roomHash string) (Room, error) {
	room, err := s.getRoom(ctx, roomHash)
	if err != nil {
		return Room{}, err
	}

	return toRoom(room), nil
}

func (s service) GetRoomState(ctx context.Context, roomHash string) (RoomState, error) {
	room, err := s.getRoom(ctx, roomHash)
	if err != nil {
		return RoomState{}, err
	}

	return toRoomState(room), nil
}

type CheckRoomPasswordParams struct {
	RoomHash string
	Password string
}

// CheckRoomPassword gates entry into a room and returns the playback
// snapshot when the candidate is accepted.
func (s service) CheckRoomPassword(ctx context.Context, params *CheckRoomPasswordParams) (RoomState, error) {
	room, err := s.getRoom(ctx, params.RoomHash)
	if err != nil {
		return RoomState{}, err
	}

	if !room.IsActive {
		return RoomState{}, ErrRoomClosed
	}

	if !room.ValidatePassword(params.Password) {
		return RoomState{}, ErrWrongPassword
	}

	return toRoomState(room), nil
}

type CloseRoomParams struct {
	RoomHash string
	Sender   domain.User
}

func (s service) CloseRoom(ctx context.Context, params *CloseRoomParams) error {
	room, err := s.getRoom(ctx, params.RoomHash)
	if err != nil {
		return err
	}

	if !room.IsOwner(params.Sender) {
		return ErrPermissionDenied
	}

	room.Close()
	room.Touch()
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}

	s.logger.InfoContext(ctx, "room closed", "room_hash", params.RoomHash)
	return nil
}

type DeleteRoomParams struct {
	RoomHash string
	Sender   domain.User
}

func (s service) DeleteRoom(ctx context.Context, params *DeleteRoomParams) error {
	room, err := s.getRoom(ctx, params.RoomHash)
	if err != nil {
		return err
	}

	if !room.IsOwner(params.Sender) {
		return ErrPermissionDenied
	}

	if err := s.roomRepo.Delete(ctx, params.RoomHash); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	s.logger.InfoContext(ctx, "room deleted", "room_hash", params.RoomHash)
	return nil
}
