// Package game defines the contract between the room layer and the
// hosted activity running inside a room. The room layer never depends
// on a concrete activity type; it drives a Session purely through this
// interface.
package game

// Snapshot is a serializable point-in-time view of a session's state,
// returned on state queries. Implementations must be safe to encode
// after the session has advanced (no live references to mutable state).
type Snapshot map[string]any

// Session is one instance of a hosted activity, owned exclusively by a
// single room. Implementations must be safe for concurrent use: the
// room layer serializes mutation per room, but snapshots may be taken
// while another request is mutating a different room.
type Session interface {
	// Snapshot returns a consistent view of the session's current state.
	//
	// Postcondition: The returned Snapshot is detached from the session;
	// later session mutation does not alter it.
	Snapshot() Snapshot

	// End terminates the session. Called exactly once, as part of room
	// removal. After End, mutating operations on the session fail.
	End()
}

// Joiner is an optional capability of a Session. When a session
// implements it, the room layer calls Join the first time each user
// enters the room, letting the activity register the participant (deal
// a hand, seat a player). Re-entry by a present user never reaches
// Join, so implementations need not be idempotent.
type Joiner interface {
	// Join registers a newly entering user with the activity.
	//
	// Postcondition: Returns nil on success; a non-nil error rejects the
	// entry and leaves the activity unchanged.
	Join(user string) error
}

// Factory constructs a fresh Session for a newly created room.
type Factory func() Session
