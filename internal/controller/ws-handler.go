package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/watchroom/server/internal/service/room"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (c controller) handleAlive(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	return nil
}

type JoinRoomInput struct {
	RoomHash string `json:"room_hash"`
	Password string `json:"password"`
}

func (c controller) handleJoinRoom(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input JoinRoomInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	// the password gate runs on every join, not only the first one, so a
	// rotated password cuts off stale clients on reconnect
	if _, err := c.roomService.CheckRoomPassword(ctx, &room.CheckRoomPasswordParams{
		RoomHash: input.RoomHash,
		Password: input.Password,
	}); err != nil {
		return err
	}

	joinRoomResp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		RoomHash: input.RoomHash,
		Conn:     c.getConnFromCtx(ctx),
		User:     c.getUserFromCtx(ctx),
	})
	if err != nil {
		return err
	}

	if err := c.writeToConn(ctx, c.getConnFromCtx(ctx), &Output{
		Type: "ROOM_STATE",
		Payload: map[string]any{
			"room_hash": input.RoomHash,
			"state":     joinRoomResp.State,
			"users":     joinRoomResp.Occupants,
		},
	}); err != nil {
		return fmt.Errorf("failed to write room state: %w", err)
	}

	c.broadcast(ctx, joinRoomResp.Others, &Output{
		Type: "USER_JOINED",
		Payload: map[string]any{
			"user": joinRoomResp.JoinedUser,
		},
	})
	c.broadcast(ctx, joinRoomResp.Conns, &Output{
		Type: "USER_LIST",
		Payload: map[string]any{
			"users": joinRoomResp.Occupants,
		},
	})

	return nil
}

func (c controller) handleLeaveRoom(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	return c.leave(ctx)
}

// leave is shared by the explicit LEAVE_ROOM message and the disconnect hook.
func (c controller) leave(ctx context.Context) error {
	connHandle := c.getConnFromCtx(ctx)
	if connHandle == nil {
		return nil
	}

	leaveRoomResp, err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		ConnId: connHandle.Id,
	})
	if err != nil {
		return err
	}

	if !leaveRoomResp.Left {
		return nil
	}

	c.broadcast(ctx, leaveRoomResp.Conns, &Output{
		Type: "USER_LEFT",
		Payload: map[string]any{
			"user": leaveRoomResp.User,
		},
	})
	c.broadcast(ctx, leaveRoomResp.Conns, &Output{
		Type: "USER_LIST",
		Payload: map[string]any{
			"users": leaveRoomResp.Occupants,
		},
	})

	return nil
}

type SyncStateInput struct {
	RoomHash string `json:"room_hash"`
}

func (c controller) handleSyncState(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input SyncStateInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	state, err := c.roomService.SyncState(ctx, input.RoomHash)
	if err != nil {
		return err
	}

	if err := c.writeToConn(ctx, c.getConnFromCtx(ctx), &Output{
		Type: "ROOM_STATE",
		Payload: map[string]any{
			"room_hash": input.RoomHash,
			"state":     state,
		},
	}); err != nil {
		return fmt.Errorf("failed to write room state: %w", err)
	}

	return nil
}

type PlayerActionInput struct {
	RoomHash      string   `json:"room_hash"`
	Action        string   `json:"action"`
	SeekTime      *float64 `json:"seek_time"`
	ExpectedIndex *int     `json:"expected_index"`
}

func (c controller) handlePlayerAction(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input PlayerActionInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	connHandle := c.getConnFromCtx(ctx)

	playerActionResp, err := c.roomService.HandlePlayerAction(ctx, &room.HandlePlayerActionParams{
		RoomHash:      input.RoomHash,
		SenderConnId:  connHandle.Id,
		Action:        room.PlayerAction(input.Action),
		SeekTime:      input.SeekTime,
		ExpectedIndex: input.ExpectedIndex,
	})
	if err != nil {
		return err
	}

	// rejected moves are dropped silently; the sender reconciles via SYNC_STATE
	if !playerActionResp.Applied {
		return nil
	}

	c.broadcast(ctx, playerActionResp.Others, &Output{
		Type: "PLAYER_ACTION",
		Payload: map[string]any{
			"action":         input.Action,
			"seek_time":      input.SeekTime,
			"expected_index": input.ExpectedIndex,
			"sender":         c.getUserFromCtx(ctx).DisplayName,
		},
	})

	return nil
}

type JumpToVideoInput struct {
	RoomHash string `json:"room_hash"`
	Index    int    `json:"index"`
}

func (c controller) handleJumpToVideo(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input JumpToVideoInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	jumpResp, err := c.roomService.JumpToVideo(ctx, &room.JumpToVideoParams{
		RoomHash: input.RoomHash,
		Index:    input.Index,
	})
	if err != nil {
		return err
	}

	output := Output{
		Type: "ROOM_STATE",
		Payload: map[string]any{
			"room_hash": input.RoomHash,
			"state":     jumpResp.State,
		},
	}

	if !jumpResp.Applied {
		// out of range jump: resync the sender only
		return c.writeToConn(ctx, c.getConnFromCtx(ctx), &output)
	}

	c.broadcast(ctx, jumpResp.Conns, &output)

	return nil
}

type AddVideoInput struct {
	RoomHash     string `json:"room_hash"`
	VideoRef     string `json:"video_ref"`
	Title        string `json:"title"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

func (c controller) handleAddVideo(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input AddVideoInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	addVideoResp, err := c.roomService.AddVideo(ctx, &room.AddVideoParams{
		RoomHash:     input.RoomHash,
		VideoRef:     input.VideoRef,
		Title:        input.Title,
		ThumbnailUrl: input.ThumbnailUrl,
		Sender:       c.getUserFromCtx(ctx),
	})
	if err != nil {
		return err
	}

	c.broadcast(ctx, addVideoResp.Conns, &Output{
		Type: "PLAYLIST_UPDATED",
		Payload: map[string]any{
			"added_item": addVideoResp.AddedItem,
			"playlist":   addVideoResp.Playlist,
		},
	})

	return nil
}

type AddPlaylistByUrlInput struct {
	RoomHash string `json:"room_hash"`
	Url      string `json:"url"`
}

func (c controller) handleAddPlaylistByUrl(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input AddPlaylistByUrlInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	addPlaylistResp, err := c.roomService.AddPlaylistByUrl(ctx, &room.AddPlaylistByUrlParams{
		RoomHash: input.RoomHash,
		Url:      input.Url,
		Sender:   c.getUserFromCtx(ctx),
	})
	if err != nil {
		return err
	}

	if len(addPlaylistResp.AddedItems) == 0 {
		return nil
	}

	c.broadcast(ctx, addPlaylistResp.Conns, &Output{
		Type: "PLAYLIST_UPDATED",
		Payload: map[string]any{
			"added_items": addPlaylistResp.AddedItems,
		},
	})

	return nil
}

type RemoveVideoInput struct {
	RoomHash string `json:"room_hash"`
	ItemId   string `json:"item_id"`
}

func (c controller) handleRemoveVideo(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input RemoveVideoInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	removeVideoResp, err := c.roomService.RemoveVideo(ctx, &room.RemoveVideoParams{
		RoomHash: input.RoomHash,
		ItemId:   input.ItemId,
	})
	if err != nil {
		return err
	}

	c.broadcast(ctx, removeVideoResp.Conns, &Output{
		Type: "PLAYLIST_UPDATED",
		Payload: map[string]any{
			"removed_item_id": removeVideoResp.RemovedItemId,
			"playlist":        removeVideoResp.Playlist,
		},
	})

	return nil
}

type ClearPlaylistInput struct {
	RoomHash string `json:"room_hash"`
}

func (c controller) handleClearPlaylist(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input ClearPlaylistInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	clearResp, err := c.roomService.ClearPlaylist(ctx, &room.ClearPlaylistParams{
		RoomHash: input.RoomHash,
	})
	if err != nil {
		return err
	}

	c.broadcast(ctx, clearResp.Conns, &Output{
		Type: "PLAYLIST_CLEARED",
	})

	return nil
}

type ChatMessageInput struct {
	RoomHash string `json:"room_hash"`
	Content  string `json:"content"`
}

func (c controller) handleChatMessage(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input ChatMessageInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	chatResp, err := c.roomService.SendChatMessage(ctx, &room.SendChatMessageParams{
		RoomHash: input.RoomHash,
		Content:  input.Content,
		Sender:   c.getUserFromCtx(ctx),
	})
	if err != nil {
		return err
	}

	c.broadcast(ctx, chatResp.Conns, &Output{
		Type: "CHAT_MESSAGE",
		Payload: map[string]any{
			"message": chatResp.Message,
		},
	})

	return nil
}

func (c controller) handleWSError(ctx context.Context, conn *websocket.Conn, err error) {
	c.logger.WarnContext(ctx, "websocket handler error", "error", err)

	connHandle := c.getConnFromCtx(ctx)
	if connHandle == nil {
		return
	}

	if writeErr := c.writeToConn(ctx, connHandle, &Output{
		Type: "ERROR",
		Payload: map[string]any{
			"message": err.Error(),
		},
	}); writeErr != nil {
		c.logger.WarnContext(ctx, "failed to write error output", "error", writeErr)
	}
}
