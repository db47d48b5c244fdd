// Package dispatch routes decoded room events against the registry and
// shapes results into response envelopes. The dispatcher holds no state
// of its own and is safe to invoke concurrently without coordination.
package dispatch

import (
	"errors"

	"github.com/DavePearce/OnlineCards/internal/game"
)

// ErrMalformedEvent is returned when an envelope names an unrecognized
// event kind or is missing its room ID. Always a client-input fault.
var ErrMalformedEvent = errors.New("malformed event")

// Kind is the closed enumeration of room event kinds. Wire values are
// the protocol's integer tags; anything outside the five recognized
// values is invalid input.
type Kind int

const (
	// CreateRoom creates a new room under the target ID.
	CreateRoom Kind = iota
	// RemoveRoom tears down the target room.
	RemoveRoom
	// EnterRoom adds the acting user to the target room.
	EnterRoom
	// LeaveRoom removes the acting user from the target room.
	LeaveRoom
	// RoomState queries the target room's session state.
	RoomState
)

// Valid reports whether k is one of the recognized event kinds.
func (k Kind) Valid() bool {
	return k >= CreateRoom && k <= RoomState
}

// String returns the event kind name.
func (k Kind) String() string {
	switch k {
	case CreateRoom:
		return "create_room"
	case RemoveRoom:
		return "remove_room"
	case EnterRoom:
		return "enter_room"
	case LeaveRoom:
		return "leave_room"
	case RoomState:
		return "room_state"
	default:
		return "unknown"
	}
}

// Envelope is one decoded inbound event. Constructed by the transport
// adapter: Kind and Payload come from the request body, RoomID from the
// request path, UserID from whatever opaque identity the transport
// attaches.
type Envelope struct {
	Kind    Kind
	RoomID  string
	UserID  string
	Payload any
}

// Response is the reply to one event. Kind echoes the semantic outcome
// rather than the request: a successful create answers RoomState with a
// fresh snapshot, letting the client distinguish "created" from
// "already exists" without separate status codes. Acknowledgement
// responses carry the request kind and no snapshot.
type Response struct {
	Kind     Kind          `json:"kind"`
	Snapshot game.Snapshot `json:"state,omitempty"`
}
