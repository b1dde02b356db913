package room

import (
	"context"
	"fmt"

	"github.com/watchroom/server/internal/presence"
	roomRepo "github.com/watchroom/server/internal/repository/room"
)

// PlayerAction is a closed set; HandlePlayerAction matches it exhaustively
// and rejects anything else.
type PlayerAction string

const (
	PlayerActionPlay     PlayerAction = "play"
	PlayerActionPause    PlayerAction = "pause"
	PlayerActionSeekTo   PlayerAction = "seek_to"
	PlayerActionNext     PlayerAction = "next_video"
	PlayerActionPrevious PlayerAction = "previous_video"
)

type HandlePlayerActionParams struct {
	RoomHash     string
	SenderConnId string
	Action       PlayerAction
	SeekTime     *float64
	// ExpectedIndex carries the cursor index the sender believes is current.
	// Only next/previous honor it; a stale value makes the move a no-op.
	ExpectedIndex *int
}

type HandlePlayerActionResponse struct {
	// Applied is false when an optimistic navigation check rejected the move
	// or a relative move hit a playlist boundary.
	Applied bool
	Others  []*presence.Conn
}

// HandlePlayerAction applies the action to the aggregate and returns the
// peers the raw action is relayed to. Play and pause are last-writer-wins;
// seek is a transport-level hint that never touches the store.
func (s service) HandlePlayerAction(ctx context.Context, params *HandlePlayerActionParams) (HandlePlayerActionResponse, error) {
	applied := true

	switch params.Action {
	case PlayerActionPlay, PlayerActionPause:
		room, err := s.getRoom(ctx, params.RoomHash)
		if err != nil {
			return HandlePlayerActionResponse{}, err
		}

		seekTime := 0.0
		if params.SeekTime != nil {
			seekTime = *params.SeekTime
		}
		room.UpdatePlayerState(seekTime, params.Action == PlayerActionPlay)
		room.Touch()

		if err := s.roomRepo.Update(ctx, room); err != nil {
			return HandlePlayerActionResponse{}, fmt.Errorf("failed to update room: %w", err)
		}

	case PlayerActionSeekTo:
		// relayed to peers only

	case PlayerActionNext, PlayerActionPrevious:
		delta := 1
		if params.Action == PlayerActionPrevious {
			delta = -1
		}

		expected := -1
		if params.ExpectedIndex != nil {
			expected = *params.ExpectedIndex
		}

		_, moved, err := s.roomRepo.MoveCursor(ctx, &roomRepo.MoveCursorParams{
			RoomHash:      params.RoomHash,
			ExpectedIndex: expected,
			Delta:         delta,
		})
		if err != nil {
			if err == roomRepo.ErrRoomNotFound {
				return HandlePlayerActionResponse{}, ErrRoomNotFound
			}
			return HandlePlayerActionResponse{}, fmt.Errorf("failed to move cursor: %w", err)
		}

		if !moved {
			s.logger.DebugContext(ctx, "cursor move rejected",
				"room_hash", params.RoomHash,
				"action", params.Action,
				"expected_index", expected,
			)
		}
		applied = moved

	default:
		return HandlePlayerActionResponse{}, fmt.Errorf("%w: %s", ErrUnknownPlayerAction, params.Action)
	}

	return HandlePlayerActionResponse{
		Applied: applied,
		Others:  s.registry.ConnsExcept(params.RoomHash, params.SenderConnId),
	}, nil
}

type JumpToVideoParams struct {
	RoomHash string
	Index    int
}

type JumpToVideoResponse struct {
	Applied bool
	State   RoomState
	Conns   []*presence.Conn
}

// JumpToVideo is an absolute, idempotent seek; peers re-render from the full
// snapshot rather than applying a relative action.
func (s service) JumpToVideo(ctx context.Context, params *JumpToVideoParams) (JumpToVideoResponse, error) {
	room, err := s.getRoom(ctx, params.RoomHash)
	if err != nil {
		return JumpToVideoResponse{}, err
	}

	jumped := room.JumpTo(params.Index)
	if jumped {
		room.Touch()
		if err := s.roomRepo.Update(ctx, room); err != nil {
			return JumpToVideoResponse{}, fmt.Errorf("failed to update room: %w", err)
		}
	}

	return JumpToVideoResponse{
		Applied: jumped,
		State:   toRoomState(room),
		Conns:   s.registry.Conns(params.RoomHash),
	}, nil
}
