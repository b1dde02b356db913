package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom(t *testing.T) {
	owner := User{Id: "u1", DisplayName: "owner"}

	room, err := NewRoom("  movie night  ", owner, "")
	require.NoError(t, err)
	assert.Equal(t, "movie night", room.Name)
	assert.NotEmpty(t, room.Id)
	assert.Len(t, room.Hash, 16, "hash must be 8 random bytes hex encoded")
	assert.True(t, room.IsActive)
	assert.False(t, room.HasPassword())
	assert.True(t, room.ValidatePassword(""), "open room must accept any candidate")
	assert.True(t, room.ValidatePassword("anything"))

	_, err = NewRoom("   ", owner, "")
	assert.ErrorIs(t, err, ErrRoomNameRequired)
}

func TestRoomPassword(t *testing.T) {
	room, err := NewRoom("locked", User{DisplayName: "owner"}, "s3cret")
	require.NoError(t, err)

	assert.True(t, room.HasPassword())
	assert.NotEqual(t, "s3cret", room.PasswordHash, "password must be stored hashed")
	assert.True(t, room.ValidatePassword("s3cret"))
	assert.False(t, room.ValidatePassword("wrong"))
	assert.False(t, room.ValidatePassword(""))
}

func TestIsOwner(t *testing.T) {
	room, err := NewRoom("r", User{Id: "u1", DisplayName: "Alice"}, "")
	require.NoError(t, err)

	assert.True(t, room.IsOwner(User{Id: "u1", DisplayName: "someone else"}))
	assert.False(t, room.IsOwner(User{Id: "u2", DisplayName: "Alice"}), "id wins over name when both sides have one")

	anonRoom, err := NewRoom("r", User{DisplayName: "Alice"}, "")
	require.NoError(t, err)
	assert.True(t, anonRoom.IsOwner(User{DisplayName: "alice"}), "name fallback is case insensitive")
	assert.False(t, anonRoom.IsOwner(User{DisplayName: "Bob"}))
}

func TestAddToPlaylist(t *testing.T) {
	room, err := NewRoom("r", User{DisplayName: "owner"}, "")
	require.NoError(t, err)

	first, err := room.AddToPlaylist("video-a", "A", "", "owner")
	require.NoError(t, err)
	assert.Equal(t, 0, first.Order)

	second, err := room.AddToPlaylist("video-b", "B", "", "owner")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Order)

	_, err = room.AddToPlaylist("video-a", "A again", "", "owner")
	assert.ErrorIs(t, err, ErrDuplicateVideo)
	assert.Len(t, room.Playlist, 2)

	_, err = room.AddToPlaylist("   ", "", "", "owner")
	assert.ErrorIs(t, err, ErrVideoRefRequired)
}

func TestRemoveFromPlaylistKeepsCursor(t *testing.T) {
	room, err := NewRoom("r", User{DisplayName: "owner"}, "")
	require.NoError(t, err)

	a, _ := room.AddToPlaylist("video-a", "A", "", "owner")
	room.AddToPlaylist("video-b", "B", "", "owner")
	room.AddToPlaylist("video-c", "C", "", "owner")

	require.True(t, room.JumpTo(1))

	// removing an item before the cursor does not shift the cursor, so it now
	// points at a different video
	require.NoError(t, room.RemoveFromPlaylist(a.Id))
	assert.Equal(t, 1, room.CurrentVideoIndex)
	assert.Equal(t, "video-c", room.CurrentVideo().VideoRef)

	for i, item := range room.Playlist {
		assert.Equal(t, i, item.Order, "orders must be renumbered densely")
	}

	err = room.RemoveFromPlaylist("missing-id")
	assert.ErrorIs(t, err, ErrPlaylistItemNotFound)
}

func TestClearPlaylist(t *testing.T) {
	room, err := NewRoom("r", User{DisplayName: "owner"}, "")
	require.NoError(t, err)

	room.AddToPlaylist("video-a", "A", "", "owner")
	room.AddToPlaylist("video-b", "B", "", "owner")
	room.JumpTo(1)
	room.UpdatePlayerState(42.5, true)

	room.ClearPlaylist()

	assert.Empty(t, room.Playlist)
	assert.Equal(t, 0, room.CurrentVideoIndex)
	assert.Zero(t, room.CurrentTime)
	assert.False(t, room.IsPlaying)
	assert.Nil(t, room.CurrentVideo())
}

func TestCursorMoves(t *testing.T) {
	room, err := NewRoom("r", User{DisplayName: "owner"}, "")
	require.NoError(t, err)

	room.AddToPlaylist("video-a", "A", "", "owner")
	room.AddToPlaylist("video-b", "B", "", "owner")

	assert.False(t, room.MovePrevious(), "previous at the start is a no-op")

	room.UpdatePlayerState(100, false)
	assert.True(t, room.MoveNext())
	assert.Equal(t, 1, room.CurrentVideoIndex)
	assert.Zero(t, room.CurrentTime, "moving resets playback time")
	assert.True(t, room.IsPlaying, "moving starts playback")

	assert.False(t, room.MoveNext(), "next at the end is a no-op")

	assert.False(t, room.JumpTo(5))
	assert.False(t, room.JumpTo(-1))
	assert.True(t, room.JumpTo(0))
	assert.Equal(t, 0, room.CurrentVideoIndex)
}

func TestCloseRoom(t *testing.T) {
	room, err := NewRoom("r", User{DisplayName: "owner"}, "")
	require.NoError(t, err)

	room.AddToPlaylist("video-a", "A", "", "owner")
	room.UpdatePlayerState(10, true)

	room.Close()

	assert.False(t, room.IsActive)
	assert.False(t, room.IsPlaying)
}

func TestIsInactiveFor(t *testing.T) {
	room, err := NewRoom("r", User{DisplayName: "owner"}, "")
	require.NoError(t, err)

	assert.False(t, room.IsInactiveFor(time.Minute))

	room.LastActivityAt = time.Now().Add(-2 * time.Hour)
	assert.True(t, room.IsInactiveFor(time.Minute))

	room.Touch()
	assert.False(t, room.IsInactiveFor(time.Minute))
}
