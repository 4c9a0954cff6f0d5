package ws

import (
	"sync"

	"github.com/rifat-hossain/bidhaus/pkg/logger"
)

// Hub maintains auction rooms: the set of connections subscribed to each
// auction's events. Membership is the only shared mutable state here and is
// guarded by the mutex; delivery is best-effort with no replay.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	log   *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		log:   log,
	}
}

// Join subscribes a client to an auction room. Joining an already-joined
// room is a no-op; a client may be in any number of rooms.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

// Leave drops a client from one room.
func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(c, room)
}

// Drop removes a client from every room it joined. Called on disconnect;
// other subscribers are unaffected.
func (h *Hub) Drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range c.rooms {
		h.drop(c, room)
	}
}

func (h *Hub) drop(c *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

// Broadcast delivers a payload to every current member of a room. A member
// whose send buffer is full is skipped rather than allowed to stall the
// room.
func (h *Hub) Broadcast(room string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		select {
		case c.send <- payload:
		default:
			h.log.Warnw("[WS] slow subscriber, dropping event", "room", room)
		}
	}
}

// RoomSize reports current membership of a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
