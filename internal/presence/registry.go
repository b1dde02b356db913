package presence

import (
	"sync"

	"github.com/watchroom/server/internal/domain"
)

// Registry tracks live connections per room and collapses multiple
// connections of one user into a single logical occupant. It is safe for
// concurrent use by any number of connection handlers; mutation of one room
// never serializes behind traffic to another.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry
	conns map[string]string // connId -> roomHash
}

type roomEntry struct {
	mu     sync.Mutex
	gone   bool
	conns  map[string]*Conn
	users  map[string]domain.User // connId -> descriptor
	counts map[string]int         // userKey -> open connections
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*roomEntry),
		conns: make(map[string]string),
	}
}

// LeaveResult describes the membership removed by Leave.
type LeaveResult struct {
	RoomHash string
	User     domain.User
	// LastConnection is true when the user's open-connection count reached
	// zero, i.e. the persisted room counter should be decremented.
	LastConnection bool
}

// Join registers the connection under the room and returns true exactly when
// this is the user's first open connection to it.
func (r *Registry) Join(roomHash string, conn *Conn, user domain.User) bool {
	for {
		r.mu.Lock()
		room, ok := r.rooms[roomHash]
		if !ok {
			room = &roomEntry{
				conns:  make(map[string]*Conn),
				users:  make(map[string]domain.User),
				counts: make(map[string]int),
			}
			r.rooms[roomHash] = room
		}
		r.conns[conn.Id] = roomHash
		r.mu.Unlock()

		room.mu.Lock()
		if room.gone {
			// lost a race with the room's last Leave; start over
			room.mu.Unlock()
			continue
		}

		room.conns[conn.Id] = conn
		room.users[conn.Id] = user
		room.counts[user.Key()]++
		first := room.counts[user.Key()] == 1
		room.mu.Unlock()

		return first
	}
}

// Leave removes the connection's membership. Unknown connection ids are a
// no-op, which makes the method safe to call from both the explicit leave
// and the transport disconnect hook.
func (r *Registry) Leave(connId string) (LeaveResult, bool) {
	r.mu.Lock()
	roomHash, ok := r.conns[connId]
	if !ok {
		r.mu.Unlock()
		return LeaveResult{}, false
	}
	delete(r.conns, connId)
	room := r.rooms[roomHash]
	r.mu.Unlock()

	room.mu.Lock()
	user := room.users[connId]
	delete(room.conns, connId)
	delete(room.users, connId)

	key := user.Key()
	last := false
	if count, ok := room.counts[key]; ok {
		if count <= 1 {
			delete(room.counts, key)
			last = true
		} else {
			room.counts[key] = count - 1
		}
	}

	empty := len(room.conns) == 0
	if empty {
		room.gone = true
	}
	room.mu.Unlock()

	if empty {
		// drop the entry from the index unless a fresh one already replaced
		// it; Join retries past gone entries in the meantime
		r.mu.Lock()
		if r.rooms[roomHash] == room {
			delete(r.rooms, roomHash)
		}
		r.mu.Unlock()
	}

	return LeaveResult{
		RoomHash:       roomHash,
		User:           user,
		LastConnection: last,
	}, true
}

// RoomOf returns the room the connection is currently joined to.
func (r *Registry) RoomOf(connId string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomHash, ok := r.conns[connId]
	return roomHash, ok
}

// Occupants returns a snapshot of the room's user descriptors. A user with
// several open connections appears once.
func (r *Registry) Occupants(roomHash string) []domain.User {
	room, ok := r.room(roomHash)
	if !ok {
		return []domain.User{}
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	seen := make(map[string]struct{}, len(room.counts))
	users := make([]domain.User, 0, len(room.counts))
	for _, user := range room.users {
		if _, ok := seen[user.Key()]; ok {
			continue
		}
		seen[user.Key()] = struct{}{}
		users = append(users, user)
	}

	return users
}

// Conns returns a snapshot of every live connection in the room.
func (r *Registry) Conns(roomHash string) []*Conn {
	return r.connsExcept(roomHash, "")
}

// ConnsExcept returns every live connection in the room except the sender's.
func (r *Registry) ConnsExcept(roomHash, connId string) []*Conn {
	return r.connsExcept(roomHash, connId)
}

func (r *Registry) connsExcept(roomHash, excludeId string) []*Conn {
	room, ok := r.room(roomHash)
	if !ok {
		return []*Conn{}
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	conns := make([]*Conn, 0, len(room.conns))
	for id, conn := range room.conns {
		if id == excludeId {
			continue
		}
		conns = append(conns, conn)
	}

	return conns
}

func (r *Registry) room(roomHash string) (*roomEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomHash]
	return room, ok
}
