package room

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/DavePearce/OnlineCards/internal/game"
)

// ErrRoomExists is returned by Create when a live room already holds
// the requested ID. A duplicate create is an expected, frequent outcome
// and is signalled as a value, never a panic.
var ErrRoomExists = errors.New("room already exists")

// ErrRoomNotFound is returned by lookups and mutations targeting an ID
// with no live room.
var ErrRoomNotFound = errors.New("room not found")

// Registry tracks all live rooms. All methods are safe for concurrent
// use. The registry lock guards only the key space; each room
// serializes its own mutation, so traffic against distinct rooms does
// not contend beyond the brief map access.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	logger *zap.Logger
}

// NewRegistry creates an empty room Registry.
//
// Precondition: logger must be non-nil.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		logger: logger,
	}
}

// Create atomically checks for a live room under id and, if absent,
// constructs one via factory and inserts it. The check-and-insert is a
// single atomic step: no concurrent Create for the same ID observes an
// intermediate state.
//
// Precondition: id must be non-empty; factory must be non-nil.
// Postcondition: Returns the new room, or ErrRoomExists with no mutation.
func (reg *Registry) Create(id string, factory game.Factory) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.rooms[id]; exists {
		return nil, fmt.Errorf("room %q: %w", id, ErrRoomExists)
	}

	r := newRoom(id, factory())
	reg.rooms[id] = r

	reg.logger.Info("room created",
		zap.String("room_id", id),
		zap.Int("total_rooms", len(reg.rooms)),
	)
	return r, nil
}

// Get returns the live room with the given ID. Never blocks on
// unrelated rooms.
//
// Postcondition: Returns the room, or ErrRoomNotFound.
func (reg *Registry) Get(id string) (*Room, error) {
	reg.mu.RLock()
	r, exists := reg.rooms[id]
	reg.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("room %q: %w", id, ErrRoomNotFound)
	}
	return r, nil
}

// Remove evicts the room with the given ID and ends its session as one
// logical operation. Eviction and removal are the same atomic step; an
// evicted room is never visible to subsequent lookups.
//
// Postcondition: Returns nil on success, or ErrRoomNotFound if absent.
// Callers treating repeated removal as idempotent may ignore the error.
func (reg *Registry) Remove(id string) error {
	reg.mu.Lock()
	r, exists := reg.rooms[id]
	if exists {
		delete(reg.rooms, id)
	}
	total := len(reg.rooms)
	reg.mu.Unlock()

	if !exists {
		return fmt.Errorf("room %q: %w", id, ErrRoomNotFound)
	}

	r.end()
	reg.logger.Info("room removed",
		zap.String("room_id", id),
		zap.Int("total_rooms", total),
	)
	return nil
}

// Enter adds the user to the room's participant set. Re-entry by an
// already-present user is idempotent.
//
// Precondition: id and user must be non-empty.
// Postcondition: Returns the room, or ErrRoomNotFound.
func (reg *Registry) Enter(id, user string) (*Room, error) {
	r, err := reg.Get(id)
	if err != nil {
		return nil, err
	}
	if err := r.enter(user); err != nil {
		return nil, fmt.Errorf("room %q: %w", id, err)
	}

	reg.logger.Info("user entered room",
		zap.String("room_id", id),
		zap.String("user_id", user),
		zap.Int("participants", r.ParticipantCount()),
	)
	return r, nil
}

// Leave removes the user from the room's participant set. Removing an
// absent user is idempotent.
//
// Precondition: id and user must be non-empty.
// Postcondition: Returns nil, or ErrRoomNotFound if the room is absent.
func (reg *Registry) Leave(id, user string) error {
	r, err := reg.Get(id)
	if err != nil {
		return err
	}
	if err := r.leave(user); err != nil {
		return fmt.Errorf("room %q: %w", id, err)
	}

	reg.logger.Info("user left room",
		zap.String("room_id", id),
		zap.String("user_id", user),
		zap.Int("participants", r.ParticipantCount()),
	)
	return nil
}

// Len returns the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Close evicts every live room and ends its session. Used at server
// shutdown.
func (reg *Registry) Close() {
	reg.mu.Lock()
	rooms := reg.rooms
	reg.rooms = make(map[string]*Room)
	reg.mu.Unlock()

	for _, r := range rooms {
		r.end()
	}
	reg.logger.Info("registry closed", zap.Int("rooms_ended", len(rooms)))
}
