package dispatch

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/DavePearce/OnlineCards/internal/game"
	"github.com/DavePearce/OnlineCards/internal/room"
)

// Dispatcher validates event envelopes and translates each into exactly
// one registry operation. Both dependencies are explicit so tests can
// instantiate isolated instances.
type Dispatcher struct {
	registry *room.Registry
	factory  game.Factory
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher with the given dependencies.
//
// Precondition: registry, factory, and logger must be non-nil.
func NewDispatcher(registry *room.Registry, factory game.Factory, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
		logger:   logger,
	}
}

// Handle processes one event. Events are independent: no ordering is
// assumed between successive events from the same user, and every event
// either succeeds or definitively fails with no partial registry state.
//
// Postcondition: Returns exactly one Response, or exactly one error
// matchable with errors.Is against ErrMalformedEvent,
// room.ErrRoomExists, or room.ErrRoomNotFound.
func (d *Dispatcher) Handle(ev Envelope) (Response, error) {
	if !ev.Kind.Valid() {
		return Response{}, fmt.Errorf("unrecognized kind %d: %w", int(ev.Kind), ErrMalformedEvent)
	}
	if ev.RoomID == "" {
		return Response{}, fmt.Errorf("missing room id: %w", ErrMalformedEvent)
	}

	d.logger.Debug("handling event",
		zap.Stringer("kind", ev.Kind),
		zap.String("room_id", ev.RoomID),
		zap.String("user_id", ev.UserID),
	)

	switch ev.Kind {
	case CreateRoom:
		return d.handleCreate(ev)
	case RemoveRoom:
		return d.handleRemove(ev)
	case EnterRoom:
		return d.handleEnter(ev)
	case LeaveRoom:
		return d.handleLeave(ev)
	case RoomState:
		return d.handleState(ev)
	default:
		// Unreachable: Valid() admits exactly the cases above.
		return Response{}, fmt.Errorf("unrecognized kind %d: %w", int(ev.Kind), ErrMalformedEvent)
	}
}

// handleCreate answers a successful create with a RoomState response so
// the client sees the fresh session immediately.
func (d *Dispatcher) handleCreate(ev Envelope) (Response, error) {
	r, err := d.registry.Create(ev.RoomID, d.factory)
	if err != nil {
		return Response{}, fmt.Errorf("creating room: %w", err)
	}
	return Response{Kind: RoomState, Snapshot: r.Session().Snapshot()}, nil
}

// handleRemove is idempotent: removing a room that is already gone is
// success, since repeated delivery of the same removal intent must not
// fail.
func (d *Dispatcher) handleRemove(ev Envelope) (Response, error) {
	if err := d.registry.Remove(ev.RoomID); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return Response{Kind: RemoveRoom}, nil
		}
		return Response{}, fmt.Errorf("removing room: %w", err)
	}
	return Response{Kind: RemoveRoom}, nil
}

func (d *Dispatcher) handleEnter(ev Envelope) (Response, error) {
	r, err := d.registry.Enter(ev.RoomID, ev.UserID)
	if err != nil {
		return Response{}, fmt.Errorf("entering room: %w", err)
	}
	return Response{Kind: RoomState, Snapshot: r.Session().Snapshot()}, nil
}

// handleLeave is idempotent against a missing room: a leave arriving
// after the room was removed is stale intent, not an error.
func (d *Dispatcher) handleLeave(ev Envelope) (Response, error) {
	if err := d.registry.Leave(ev.RoomID, ev.UserID); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return Response{Kind: LeaveRoom}, nil
		}
		return Response{}, fmt.Errorf("leaving room: %w", err)
	}
	return Response{Kind: LeaveRoom}, nil
}

func (d *Dispatcher) handleState(ev Envelope) (Response, error) {
	r, err := d.registry.Get(ev.RoomID)
	if err != nil {
		return Response{}, fmt.Errorf("querying room: %w", err)
	}
	return Response{Kind: RoomState, Snapshot: r.Session().Snapshot()}, nil
}
