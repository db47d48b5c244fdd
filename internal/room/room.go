// Package room provides the concurrent registry that owns room
// lifecycle: the single source of truth mapping room IDs to live rooms.
package room

import (
	"sync"

	"github.com/DavePearce/OnlineCards/internal/game"
)

// Status is the lifecycle state of a room.
type Status int

const (
	// StatusActive is a live room visible to lookups.
	StatusActive Status = iota
	// StatusEnded is a room that has been removed. Ended rooms are never
	// visible through the registry; the status exists so that an
	// operation racing with removal fails instead of mutating a corpse.
	StatusEnded
)

// Room is a named instance of a hosted activity plus its room-level
// metadata. A Room is owned exclusively by the registry entry for its
// ID; participant and status mutation is serialized by the room's own
// lock so that operations on distinct rooms never contend.
type Room struct {
	// ID is the opaque, case-sensitive room identifier.
	ID string

	mu           sync.RWMutex
	session      game.Session
	participants map[string]bool
	status       Status
}

func newRoom(id string, session game.Session) *Room {
	return &Room{
		ID:           id,
		session:      session,
		participants: make(map[string]bool),
	}
}

// Session returns the hosted activity owned by this room.
func (r *Room) Session() game.Session {
	return r.session
}

// Status returns the room's lifecycle status.
func (r *Room) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Participants returns the current participant IDs.
//
// Postcondition: Returns a detached slice; may be empty, never nil.
func (r *Room) Participants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.participants))
	for user := range r.participants {
		users = append(users, user)
	}
	return users
}

// ParticipantCount returns the number of participants.
func (r *Room) ParticipantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

// enter adds the user to the participant set. Idempotent: re-entry by a
// present user changes nothing. Fails with ErrRoomNotFound if the room
// has already ended (a lookup racing with removal). If the session
// implements game.Joiner, a first-time entry is registered with the
// activity before the participant set is touched, so a rejected join
// leaves no partial state.
func (r *Room) enter(user string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusEnded {
		return ErrRoomNotFound
	}
	if r.participants[user] {
		return nil
	}
	if j, ok := r.session.(game.Joiner); ok {
		if err := j.Join(user); err != nil {
			return err
		}
	}
	r.participants[user] = true
	return nil
}

// leave removes the user from the participant set. Idempotent: removing
// an absent user is a no-op. Fails with ErrRoomNotFound if the room has
// already ended.
func (r *Room) leave(user string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusEnded {
		return ErrRoomNotFound
	}
	delete(r.participants, user)
	return nil
}

// end transitions the room to StatusEnded and terminates its session.
// Called exactly once, by the registry's removal path.
func (r *Room) end() {
	r.mu.Lock()
	r.status = StatusEnded
	r.mu.Unlock()
	r.session.End()
}
