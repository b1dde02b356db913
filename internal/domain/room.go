package domain

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Room is the authoritative watch session state: one playlist, one playback
// cursor. All methods are pure state transitions over an in-memory copy;
// persisting the result is the caller's job.
type Room struct {
	Id                string
	Hash              string
	Name              string
	PasswordHash      string
	OwnerId           string
	OwnerName         string
	IsActive          bool
	CurrentVideoIndex int
	CurrentTime       float64
	IsPlaying         bool
	UsersCount        int
	CreatedAt         time.Time
	LastActivityAt    time.Time
	Playlist          []PlaylistItem
}

func NewRoom(name string, owner User, password string) (*Room, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrRoomNameRequired
	}

	now := time.Now().UTC()
	room := Room{
		Id:             uuid.NewString(),
		Hash:           generateHash(),
		Name:           strings.TrimSpace(name),
		OwnerId:        owner.Id,
		OwnerName:      owner.DisplayName,
		IsActive:       true,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	if strings.TrimSpace(password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		room.PasswordHash = string(hash)
	}

	return &room, nil
}

// ValidatePassword reports whether the candidate opens the room. Rooms
// without a password accept any candidate.
func (r *Room) ValidatePassword(password string) bool {
	if r.PasswordHash == "" {
		return true
	}
	if strings.TrimSpace(password) == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(r.PasswordHash), []byte(password)) == nil
}

func (r *Room) HasPassword() bool {
	return r.PasswordHash != ""
}

func (r *Room) IsOwner(user User) bool {
	if r.OwnerId != "" && user.Id != "" {
		return r.OwnerId == user.Id
	}

	return strings.EqualFold(r.OwnerName, user.DisplayName)
}

// AddToPlaylist appends an item with order = current length. A videoRef
// already present in the playlist is rejected.
func (r *Room) AddToPlaylist(videoRef, title, thumbnailUrl, addedBy string) (*PlaylistItem, error) {
	if strings.TrimSpace(videoRef) == "" {
		return nil, ErrVideoRefRequired
	}
	if r.HasVideo(videoRef) {
		return nil, ErrDuplicateVideo
	}

	item := PlaylistItem{
		Id:           uuid.NewString(),
		VideoRef:     videoRef,
		Title:        title,
		ThumbnailUrl: thumbnailUrl,
		Order:        len(r.Playlist),
		AddedBy:      addedBy,
		AddedAt:      time.Now().UTC(),
	}
	r.Playlist = append(r.Playlist, item)

	return &item, nil
}

func (r *Room) HasVideo(videoRef string) bool {
	for _, item := range r.Playlist {
		if item.VideoRef == videoRef {
			return true
		}
	}

	return false
}

// RemoveFromPlaylist removes the item and renumbers the survivors to a dense
// 0..n-1 sequence. The cursor is deliberately left untouched even when an
// item before it is removed, so it may end up pointing at a different video.
func (r *Room) RemoveFromPlaylist(itemId string) error {
	for i, item := range r.Playlist {
		if item.Id == itemId {
			r.Playlist = append(r.Playlist[:i], r.Playlist[i+1:]...)
			for j := range r.Playlist {
				r.Playlist[j].Order = j
			}

			return nil
		}
	}

	return ErrPlaylistItemNotFound
}

// ClearPlaylist empties the playlist and resets the cursor.
func (r *Room) ClearPlaylist() {
	r.Playlist = nil
	r.CurrentVideoIndex = 0
	r.CurrentTime = 0
	r.IsPlaying = false
}

// UpdatePlayerState overwrites time and playing flag at the current index.
// Last writer wins; there is no ordering token.
func (r *Room) UpdatePlayerState(currentTime float64, isPlaying bool) {
	r.CurrentTime = currentTime
	r.IsPlaying = isPlaying
}

func (r *Room) MoveNext() bool {
	if r.CurrentVideoIndex < len(r.Playlist)-1 {
		r.CurrentVideoIndex++
		r.CurrentTime = 0
		r.IsPlaying = true
		return true
	}

	return false
}

func (r *Room) MovePrevious() bool {
	if r.CurrentVideoIndex > 0 {
		r.CurrentVideoIndex--
		r.CurrentTime = 0
		r.IsPlaying = true
		return true
	}

	return false
}

func (r *Room) JumpTo(index int) bool {
	if index >= 0 && index < len(r.Playlist) {
		r.CurrentVideoIndex = index
		r.CurrentTime = 0
		r.IsPlaying = true
		return true
	}

	return false
}

// CurrentVideo returns the item at the cursor, or nil when the cursor is out
// of bounds (empty playlist).
func (r *Room) CurrentVideo() *PlaylistItem {
	if r.CurrentVideoIndex < 0 || r.CurrentVideoIndex >= len(r.Playlist) {
		return nil
	}

	return &r.Playlist[r.CurrentVideoIndex]
}

// Close retires the room from active listings and future joins. It remains
// queryable until deleted.
func (r *Room) Close() {
	r.IsActive = false
	r.IsPlaying = false
}

func (r *Room) IsInactiveFor(d time.Duration) bool {
	return time.Since(r.LastActivityAt) > d
}

func (r *Room) Touch() {
	r.LastActivityAt = time.Now().UTC()
}

func generateHash() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)

	return hex.EncodeToString(bytes)
}
