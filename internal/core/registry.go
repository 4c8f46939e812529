package core

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/peerlink/signal-server/internal/metrics"
)

// Room codes are short numeric strings so humans can read them over a call.
const (
	codeMin = 1000
	codeMax = 9999

	// Random draws before falling back to a linear sweep of the code space.
	maxCodeAttempts = 64
)

// Snapshot is the acknowledgement data for a create or join.
type Snapshot struct {
	RoomID string
	SelfID string
}

// RoomInfo describes one live room for the admin surface.
type RoomInfo struct {
	Code      string    `json:"code"`
	Members   int       `json:"members"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Registry is the sole owner of all live rooms. Every structural operation
// on a room (membership, deadline, expiry) runs under one mutex, so no two
// operations can interleave their read-modify-write of shared state.
type Registry struct {
	ttl time.Duration
	log *zerolog.Logger

	mu    sync.Mutex
	rooms map[string]*room
}

// NewRegistry constructs an empty registry. Rooms live for ttl after the
// most recent create or join touching them.
func NewRegistry(ttl time.Duration, logger *zerolog.Logger) *Registry {
	return &Registry{
		ttl:   ttl,
		log:   logger,
		rooms: make(map[string]*room),
	}
}

// Create allocates an unused room code, registers a room containing only c,
// and schedules its expiry. Returns ErrNoFreeCodes when every code in the
// space is taken; an existing room is never overwritten.
func (r *Registry) Create(c *Client) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.freeCodeLocked()
	if !ok {
		metrics.CreateFailures.Inc()
		return Snapshot{}, ErrNoFreeCodes
	}

	snap := r.createOrExtendLocked(code, c)
	r.log.Info().Str("room", code).Str("client", c.ID).Msg("room created")
	metrics.RoomsCreated.Inc()
	return snap, nil
}

// CreateOrExtend registers a room under the given code if none exists, or
// adds c to the existing one (idempotent when already a member). Either way
// the room's deadline is reset to now plus the TTL. The code is taken as
// given; callers wanting collision-free allocation use Create.
func (r *Registry) CreateOrExtend(code string, c *Client) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createOrExtendLocked(code, c)
}

// Join adds c to the room with the given code and resets the room's
// deadline. Fails with ErrRoomNotFound when no live room has the code.
func (r *Registry) Join(code string, c *Client) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[code]; !ok {
		return Snapshot{}, ErrRoomNotFound
	}

	snap := r.createOrExtendLocked(code, c)
	r.log.Info().Str("room", code).Str("client", c.ID).Msg("client joined room")
	return snap, nil
}

// RemoveMember removes c from the room's membership if present. The room
// itself stays registered and keeps counting toward its deadline; activity,
// not occupancy, drives room lifetime. Idempotent, and safe when the room
// no longer exists.
func (r *Registry) RemoveMember(code string, c *Client) {
	if code == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		return
	}
	if rm.removeMember(c) {
		r.log.Debug().Str("room", code).Str("client", c.ID).Msg("client left room")
	}
}

// Relay delivers payload to every member of the sender's current room
// except the sender, tagged with the sender's identity. A sender with no
// room, or a stale room reference, is a silent no-op. Delivery is
// fire-and-forget per recipient.
func (r *Registry) Relay(sender *Client, payload []byte) {
	code := sender.Room()
	if code == "" {
		return
	}

	r.mu.Lock()
	rm, ok := r.rooms[code]
	if !ok {
		r.mu.Unlock()
		return
	}
	recipients := rm.others(sender)
	r.mu.Unlock()

	ev := Event{Kind: EventSignal, SenderID: sender.ID, Payload: payload}
	for _, m := range recipients {
		if m.TrySend(ev) {
			metrics.SignalsRelayed.Inc()
		} else {
			metrics.SignalsDropped.Inc()
			r.log.Warn().Str("room", code).Str("recipient", m.ID).Msg("dropped relay to slow or closed client")
		}
	}
}

// Teardown detaches the room immediately and closes every member's
// connection. Used by the admin surface; reports whether the room existed.
func (r *Registry) Teardown(code string) bool {
	r.mu.Lock()
	rm, ok := r.rooms[code]
	if !ok {
		r.mu.Unlock()
		return false
	}
	members := r.detachLocked(rm)
	r.mu.Unlock()

	for _, m := range members {
		m.Close()
	}
	r.log.Info().Str("room", code).Int("members", len(members)).Msg("room torn down")
	return true
}

// Rooms returns a point-in-time view of all live rooms, sorted by code.
func (r *Registry) Rooms() []RoomInfo {
	r.mu.Lock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, RoomInfo{Code: rm.code, Members: len(rm.members), ExpiresAt: rm.deadline})
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b RoomInfo) int {
		return strings.Compare(a.Code, b.Code)
	})
	return out
}

// Shutdown cancels every pending expiry and closes every member connection.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	var members []*Client
	for _, rm := range r.rooms {
		members = append(members, r.detachLocked(rm)...)
	}
	r.mu.Unlock()

	for _, m := range members {
		m.Close()
	}
}

// createOrExtendLocked is the shared create/join path: ensure the room
// exists, ensure membership, reset the deadline. Caller holds r.mu.
func (r *Registry) createOrExtendLocked(code string, c *Client) Snapshot {
	rm, ok := r.rooms[code]
	if !ok {
		rm = newRoom(code)
		r.rooms[code] = rm
		metrics.RoomsLive.Inc()
	}
	rm.addMember(c)
	r.scheduleLocked(rm)
	return Snapshot{RoomID: code, SelfID: c.ID}
}

// scheduleLocked resets the room's single expiry deadline. The generation
// bump makes any previously scheduled callback a no-op, so two deadlines
// for one room can never both fire. Caller holds r.mu.
func (r *Registry) scheduleLocked(rm *room) {
	rm.gen++
	gen := rm.gen
	rm.deadline = time.Now().Add(r.ttl)
	if rm.timer != nil {
		rm.timer.Stop()
	}
	code := rm.code
	rm.timer = time.AfterFunc(r.ttl, func() {
		r.expire(code, gen)
	})
}

// expire is the timer callback: detach the room and close all members.
// A callback holding a stale generation lost a race with a deadline reset
// and does nothing.
func (r *Registry) expire(code string, gen uint64) {
	r.mu.Lock()
	rm, ok := r.rooms[code]
	if !ok || rm.gen != gen {
		r.mu.Unlock()
		return
	}
	members := r.detachLocked(rm)
	r.mu.Unlock()

	for _, m := range members {
		m.Close()
	}
	r.log.Info().Str("room", code).Int("members", len(members)).Msg("room expired")
	metrics.RoomsExpired.Inc()
}

// detachLocked removes the room from the registry and stops its timer,
// returning the final member list for closure. Caller holds r.mu.
func (r *Registry) detachLocked(rm *room) []*Client {
	delete(r.rooms, rm.code)
	if rm.timer != nil {
		rm.timer.Stop()
	}
	metrics.RoomsLive.Dec()
	return rm.all()
}

// freeCodeLocked draws random codes until an unused one turns up, then
// falls back to sweeping the space from a random offset. Returns false
// only when every code is taken. Caller holds r.mu.
func (r *Registry) freeCodeLocked() (string, bool) {
	span := codeMax - codeMin + 1
	for range maxCodeAttempts {
		code := strconv.Itoa(codeMin + rand.IntN(span))
		if _, taken := r.rooms[code]; !taken {
			return code, true
		}
	}
	start := rand.IntN(span)
	for i := range span {
		code := strconv.Itoa(codeMin + (start+i)%span)
		if _, taken := r.rooms[code]; !taken {
			return code, true
		}
	}
	return "", false
}
