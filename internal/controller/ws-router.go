package controller

import (
	"github.com/watchroom/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsRequestIdWSMw())
	mux.Use(c.loggerWSMw())

	mux.Handle("ALIVE", c.handleAlive)

	// session
	mux.Handle("JOIN_ROOM", c.handleJoinRoom)
	mux.Handle("LEAVE_ROOM", c.handleLeaveRoom)
	mux.Handle("SYNC_STATE", c.handleSyncState)

	// player
	mux.Handle("PLAYER_ACTION", c.handlePlayerAction)
	mux.Handle("JUMP_TO_VIDEO", c.handleJumpToVideo)

	// playlist
	mux.Handle("ADD_VIDEO", c.handleAddVideo)
	mux.Handle("ADD_PLAYLIST_BY_URL", c.handleAddPlaylistByUrl)
	mux.Handle("REMOVE_VIDEO", c.handleRemoveVideo)
	mux.Handle("CLEAR_PLAYLIST", c.handleClearPlaylist)

	// chat
	mux.Handle("CHAT_MESSAGE", c.handleChatMessage)

	mux.HandleError(c.handleWSError)

	return mux
}
