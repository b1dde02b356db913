package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/watchroom/server/internal/domain"
	"github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/rest"
	"github.com/watchroom/server/pkg/ytdata"
)

func (c controller) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var status int

	switch {
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, domain.ErrPlaylistItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, room.ErrWrongPassword):
		status = http.StatusUnauthorized
	case errors.Is(err, room.ErrRoomClosed):
		status = http.StatusGone
	case errors.Is(err, room.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, room.ErrPlaylistLimitReached), errors.Is(err, domain.ErrDuplicateVideo):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrRoomNameRequired),
		errors.Is(err, domain.ErrVideoRefRequired),
		errors.Is(err, domain.ErrEmptyMessage):
		status = http.StatusBadRequest
	case errors.Is(err, ytdata.ErrInvalidReference),
		errors.Is(err, ytdata.ErrVideoNotFound),
		errors.Is(err, ytdata.ErrVideoNotEmbeddable):
		status = http.StatusUnprocessableEntity
	default:
		c.logger.ErrorContext(r.Context(), "unhandled service error", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal server error"})
		return
	}

	rest.WriteJSON(w, status, rest.Envelope{"error": err.Error()})
}

func (c controller) resolveUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	token, username := c.userFromRequest(r)
	user, err := c.identity.Resolve(token, username)
	if err != nil {
		rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": err.Error()})
		return domain.User{}, false
	}

	return user, true
}

type createRoomRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	Password string `json:"password" validate:"max=72"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := c.resolveUser(w, r)
	if !ok {
		return
	}

	var req createRoomRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	createdRoom, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		Name:     req.Name,
		Password: req.Password,
		Owner:    user,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": createdRoom})
}

func (c controller) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := c.roomService.GetActiveRooms(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": rooms})
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	foundRoom, err := c.roomService.GetRoomByHash(r.Context(), chi.URLParam(r, "room-hash"))
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": foundRoom})
}

type checkPasswordRequest struct {
	Password string `json:"password"`
}

func (c controller) checkRoomPassword(w http.ResponseWriter, r *http.Request) {
	var req checkPasswordRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	state, err := c.roomService.CheckRoomPassword(r.Context(), &room.CheckRoomPasswordParams{
		RoomHash: chi.URLParam(r, "room-hash"),
		Password: req.Password,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": state})
}

func (c controller) closeRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := c.resolveUser(w, r)
	if !ok {
		return
	}

	if err := c.roomService.CloseRoom(r.Context(), &room.CloseRoomParams{
		RoomHash: chi.URLParam(r, "room-hash"),
		Sender:   user,
	}); err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": "room closed"})
}

func (c controller) deleteRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := c.resolveUser(w, r)
	if !ok {
		return
	}

	if err := c.roomService.DeleteRoom(r.Context(), &room.DeleteRoomParams{
		RoomHash: chi.URLParam(r, "room-hash"),
		Sender:   user,
	}); err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": "room deleted"})
}

func (c controller) getPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := c.roomService.GetPlaylist(r.Context(), chi.URLParam(r, "room-hash"))
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": playlist})
}

type addVideoRequest struct {
	VideoRef     string `json:"video_ref" validate:"required"`
	Title        string `json:"title" validate:"max=256"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

func (c controller) addVideo(w http.ResponseWriter, r *http.Request) {
	user, ok := c.resolveUser(w, r)
	if !ok {
		return
	}

	var req addVideoRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	addVideoResp, err := c.roomService.AddVideo(r.Context(), &room.AddVideoParams{
		RoomHash:     chi.URLParam(r, "room-hash"),
		VideoRef:     req.VideoRef,
		Title:        req.Title,
		ThumbnailUrl: req.ThumbnailUrl,
		Sender:       user,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	c.broadcast(r.Context(), addVideoResp.Conns, &Output{
		Type: "PLAYLIST_UPDATED",
		Payload: map[string]any{
			"added_item": addVideoResp.AddedItem,
			"playlist":   addVideoResp.Playlist,
		},
	})

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": addVideoResp.AddedItem})
}

type addPlaylistByUrlRequest struct {
	Url string `json:"url" validate:"required,url"`
}

func (c controller) addPlaylistByUrl(w http.ResponseWriter, r *http.Request) {
	user, ok := c.resolveUser(w, r)
	if !ok {
		return
	}

	var req addPlaylistByUrlRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	addPlaylistResp, err := c.roomService.AddPlaylistByUrl(r.Context(), &room.AddPlaylistByUrlParams{
		RoomHash: chi.URLParam(r, "room-hash"),
		Url:      req.Url,
		Sender:   user,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	if len(addPlaylistResp.AddedItems) > 0 {
		c.broadcast(r.Context(), addPlaylistResp.Conns, &Output{
			Type: "PLAYLIST_UPDATED",
			Payload: map[string]any{
				"added_items": addPlaylistResp.AddedItems,
			},
		})
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": addPlaylistResp.AddedItems})
}

func (c controller) removeVideo(w http.ResponseWriter, r *http.Request) {
	removeVideoResp, err := c.roomService.RemoveVideo(r.Context(), &room.RemoveVideoParams{
		RoomHash: chi.URLParam(r, "room-hash"),
		ItemId:   chi.URLParam(r, "item-id"),
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	c.broadcast(r.Context(), removeVideoResp.Conns, &Output{
		Type: "PLAYLIST_UPDATED",
		Payload: map[string]any{
			"removed_item_id": removeVideoResp.RemovedItemId,
			"playlist":        removeVideoResp.Playlist,
		},
	})

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": removeVideoResp.Playlist})
}

func (c controller) clearPlaylist(w http.ResponseWriter, r *http.Request) {
	clearResp, err := c.roomService.ClearPlaylist(r.Context(), &room.ClearPlaylistParams{
		RoomHash: chi.URLParam(r, "room-hash"),
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	c.broadcast(r.Context(), clearResp.Conns, &Output{
		Type: "PLAYLIST_CLEARED",
	})

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": "playlist cleared"})
}

func (c controller) getMessages(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := c.roomService.RecentMessages(r.Context(), chi.URLParam(r, "room-hash"), limit)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": messages})
}
