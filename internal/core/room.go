package core

import "time"

// room groups clients sharing one expiry deadline. All fields are guarded
// by the owning registry's mutex; nothing outside the registry touches a
// room directly.
type room struct {
	code    string
	members map[string]*Client

	deadline time.Time
	timer    *time.Timer
	// gen increments on every deadline reset so a stale timer callback
	// can recognize it has been superseded.
	gen uint64
}

func newRoom(code string) *room {
	return &room{
		code:    code,
		members: make(map[string]*Client),
	}
}

// addMember inserts a client keyed by identity. Returns true if newly added.
func (r *room) addMember(c *Client) bool {
	if _, ok := r.members[c.ID]; ok {
		return false
	}
	r.members[c.ID] = c
	return true
}

// removeMember deletes a client from membership. Returns true if removed.
func (r *room) removeMember(c *Client) bool {
	if _, ok := r.members[c.ID]; !ok {
		return false
	}
	delete(r.members, c.ID)
	return true
}

// others returns a snapshot of every member except the given sender.
func (r *room) others(sender *Client) []*Client {
	out := make([]*Client, 0, len(r.members))
	for id, m := range r.members {
		if id == sender.ID {
			continue
		}
		out = append(out, m)
	}
	return out
}

// all returns a snapshot of the full membership.
func (r *room) all() []*Client {
	out := make([]*Client, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	return out
}
