package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchroom/server/internal/domain"
)

func TestJoinCollapsesConnectionsPerUser(t *testing.T) {
	registry := NewRegistry()
	alice := domain.User{Id: "u1", DisplayName: "alice"}

	first := registry.Join("room1", NewConn("c1", nil), alice)
	assert.True(t, first, "first connection of a user must report first")

	second := registry.Join("room1", NewConn("c2", nil), alice)
	assert.False(t, second, "second connection of the same user must not report first")

	assert.Len(t, registry.Conns("room1"), 2)
	assert.Len(t, registry.Occupants("room1"), 1, "one descriptor per user, not per connection")
}

func TestLeave(t *testing.T) {
	registry := NewRegistry()
	alice := domain.User{Id: "u1", DisplayName: "alice"}
	bob := domain.User{Id: "u2", DisplayName: "bob"}

	registry.Join("room1", NewConn("a1", nil), alice)
	registry.Join("room1", NewConn("a2", nil), alice)
	registry.Join("room1", NewConn("b1", nil), bob)

	result, ok := registry.Leave("a1")
	require.True(t, ok)
	assert.Equal(t, "room1", result.RoomHash)
	assert.Equal(t, alice, result.User)
	assert.False(t, result.LastConnection, "user still has another open connection")

	result, ok = registry.Leave("a2")
	require.True(t, ok)
	assert.True(t, result.LastConnection)
	assert.Len(t, registry.Occupants("room1"), 1)

	result, ok = registry.Leave("b1")
	require.True(t, ok)
	assert.True(t, result.LastConnection)

	assert.Empty(t, registry.Conns("room1"), "empty room entry must be dropped")
	_, ok = registry.RoomOf("b1")
	assert.False(t, ok)
}

func TestLeaveIsIdempotent(t *testing.T) {
	registry := NewRegistry()

	_, ok := registry.Leave("never-joined")
	assert.False(t, ok)

	registry.Join("room1", NewConn("c1", nil), domain.User{DisplayName: "alice"})

	_, ok = registry.Leave("c1")
	require.True(t, ok)

	_, ok = registry.Leave("c1")
	assert.False(t, ok, "second leave of the same connection must be a no-op")
}

func TestConnsExcept(t *testing.T) {
	registry := NewRegistry()

	registry.Join("room1", NewConn("c1", nil), domain.User{DisplayName: "alice"})
	registry.Join("room1", NewConn("c2", nil), domain.User{DisplayName: "bob"})

	others := registry.ConnsExcept("room1", "c1")
	require.Len(t, others, 1)
	assert.Equal(t, "c2", others[0].Id)

	assert.Empty(t, registry.Conns("missing-room"))
	assert.Empty(t, registry.Occupants("missing-room"))
}

func TestRoomOf(t *testing.T) {
	registry := NewRegistry()

	registry.Join("room1", NewConn("c1", nil), domain.User{DisplayName: "alice"})

	roomHash, ok := registry.RoomOf("c1")
	require.True(t, ok)
	assert.Equal(t, "room1", roomHash)
}

func TestConcurrentJoinLeave(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			connId := fmt.Sprintf("conn-%d", i)
			user := domain.User{Id: fmt.Sprintf("u%d", i%10), DisplayName: "user"}

			registry.Join("room1", NewConn(connId, nil), user)
			registry.Conns("room1")
			registry.Leave(connId)
		}(i)
	}
	wg.Wait()

	assert.Empty(t, registry.Conns("room1"))
	assert.Empty(t, registry.Occupants("room1"))
}

// Repeatedly emptying and refilling rooms races the dropped entry against a
// fresh Join; every cycle must land in a live entry and every final Leave
// must report the user's last connection.
func TestConcurrentJoinLeaveChurn(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			roomHash := fmt.Sprintf("room-%d", i%2)
			connId := fmt.Sprintf("conn-%d", i)
			user := domain.User{Id: fmt.Sprintf("u%d", i), DisplayName: "user"}

			for j := 0; j < 100; j++ {
				first := registry.Join(roomHash, NewConn(connId, nil), user)
				assert.True(t, first)

				result, ok := registry.Leave(connId)
				assert.True(t, ok)
				assert.Equal(t, roomHash, result.RoomHash)
				assert.True(t, result.LastConnection)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, registry.Conns("room-0"))
	assert.Empty(t, registry.Conns("room-1"))
}
