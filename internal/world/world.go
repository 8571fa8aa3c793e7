package world

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/grovemud/grove/internal/storage"
)

// Sink delivers one line of text to the connection that owns a player.
// Implementations must be safe for concurrent use; any session may
// invoke a sink while delivering a room broadcast.
type Sink interface {
	Send(line string) error
}

// PlayerInfo is a point-in-time snapshot of a registered player.
type PlayerInfo struct {
	SessionId string
	Name      string
	RoomId    storage.Identifier
	Inventory []string
}

// Exit describes one direction out of a room, for display.
type Exit struct {
	Direction Direction
	RoomId    storage.Identifier
	RoomName  string
}

type player struct {
	sessionId string
	name      string
	roomId    storage.Identifier
	inventory []string
	sink      Sink
}

type roomInstance struct {
	id        storage.Identifier
	spec      *Room
	exits     map[Direction]storage.Identifier
	occupants map[string]*player
}

func (r *roomInstance) addExit(dir Direction, dest storage.Identifier) error {
	if _, ok := r.exits[dir]; ok {
		return fmt.Errorf("room %q: exit %s defined twice", r.id, dir)
	}
	r.exits[dir] = dest
	return nil
}

// World is the single source of truth for all mutable shared state:
// which players are connected and which room each one occupies. The
// room set and exits are immutable after construction; only occupancy
// and the registry change, always under the mutex.
type World struct {
	mu          sync.RWMutex
	defaultRoom storage.Identifier
	rooms       map[storage.Identifier]*roomInstance
	players     map[string]*player
}

// NewWorld builds room instances from the room store. Invalid exits
// (unknown direction, unresolvable destination, direction bound twice)
// abort construction; the graph must be sound before the first
// connection is accepted.
func NewWorld(rooms storage.Storer[*Room], defaultRoom storage.Identifier) (*World, error) {
	w := &World{
		defaultRoom: defaultRoom,
		rooms:       make(map[storage.Identifier]*roomInstance),
		players:     make(map[string]*player),
	}

	for id, spec := range rooms.GetAll() {
		w.rooms[id] = &roomInstance{
			id:        id,
			spec:      spec,
			exits:     make(map[Direction]storage.Identifier),
			occupants: make(map[string]*player),
		}
	}

	for id, spec := range rooms.GetAll() {
		ri := w.rooms[id]
		for dirName, dest := range spec.Exits {
			dir, ok := ParseDirection(dirName)
			if !ok {
				return nil, fmt.Errorf("room %q: exit %q: unknown direction", id, dirName)
			}
			destId := storage.Identifier(dest)
			if _, ok := w.rooms[destId]; !ok {
				return nil, fmt.Errorf("room %q: exit %s: destination %q not found", id, dir, dest)
			}
			if err := ri.addExit(dir, destId); err != nil {
				return nil, err
			}
		}
	}

	if _, ok := w.rooms[defaultRoom]; !ok {
		return nil, fmt.Errorf("default room %q not found", defaultRoom)
	}

	return w, nil
}

// DefaultRoom returns where players without persisted state start.
func (w *World) DefaultRoom() storage.Identifier {
	return w.defaultRoom
}

// RoomInfo returns a room's display name and description.
func (w *World) RoomInfo(id storage.Identifier) (name, description string, ok bool) {
	ri, found := w.rooms[id]
	if !found {
		return "", "", false
	}
	return ri.spec.Name, ri.spec.Description, true
}

// Exit resolves one direction out of a room.
func (w *World) Exit(roomId storage.Identifier, dir Direction) (storage.Identifier, bool) {
	ri, ok := w.rooms[roomId]
	if !ok {
		return "", false
	}
	dest, ok := ri.exits[dir]
	return dest, ok
}

// Exits lists a room's exits in canonical direction order.
func (w *World) Exits(roomId storage.Identifier) []Exit {
	ri, ok := w.rooms[roomId]
	if !ok {
		return nil
	}

	var exits []Exit
	for _, dir := range Directions() {
		dest, found := ri.exits[dir]
		if !found {
			continue
		}
		exits = append(exits, Exit{
			Direction: dir,
			RoomId:    dest,
			RoomName:  w.rooms[dest].spec.Name,
		})
	}
	return exits
}

// AddPlayer registers a player and places them in roomId. The display
// name must not already be online; a session id collision is a
// programmer error but is rejected the same way.
func (w *World) AddPlayer(sessionId, name string, roomId storage.Identifier, inventory []string, sink Sink) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.players[sessionId]; exists {
		return ErrPlayerExists
	}
	for _, p := range w.players {
		if strings.EqualFold(p.name, name) {
			return ErrPlayerExists
		}
	}

	ri, ok := w.rooms[roomId]
	if !ok {
		return ErrRoomNotFound
	}

	p := &player{
		sessionId: sessionId,
		name:      name,
		roomId:    roomId,
		inventory: append([]string(nil), inventory...),
		sink:      sink,
	}
	w.players[sessionId] = p
	ri.occupants[sessionId] = p

	return nil
}

// RemovePlayer deregisters a player and removes them from their room.
func (w *World) RemovePlayer(sessionId string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, exists := w.players[sessionId]
	if !exists {
		return ErrPlayerNotFound
	}

	if ri, ok := w.rooms[p.roomId]; ok {
		delete(ri.occupants, sessionId)
	}
	delete(w.players, sessionId)

	return nil
}

// MovePlayer atomically moves a player into the destination room,
// keeping the room-pointer/occupant-set invariant: at no point is the
// player in both rooms or in neither. This is the only way a player
// changes rooms.
func (w *World) MovePlayer(sessionId string, to storage.Identifier) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, exists := w.players[sessionId]
	if !exists {
		return ErrPlayerNotFound
	}

	dest, ok := w.rooms[to]
	if !ok {
		return ErrRoomNotFound
	}

	if from, ok := w.rooms[p.roomId]; ok {
		delete(from.occupants, sessionId)
	}
	dest.occupants[sessionId] = p
	p.roomId = to

	return nil
}

// GetPlayer returns a snapshot of a registered player, or nil.
func (w *World) GetPlayer(sessionId string) *PlayerInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.players[sessionId]
	if !ok {
		return nil
	}
	return p.snapshot()
}

func (p *player) snapshot() *PlayerInfo {
	return &PlayerInfo{
		SessionId: p.sessionId,
		Name:      p.name,
		RoomId:    p.roomId,
		Inventory: append([]string(nil), p.inventory...),
	}
}

// Players returns a snapshot of every registered player. Callers may
// mutate the registry while iterating the result; shutdown depends on
// that.
func (w *World) Players() []*PlayerInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()

	players := make([]*PlayerInfo, 0, len(w.players))
	for _, p := range w.players {
		players = append(players, p.snapshot())
	}
	return players
}

// PlayerNames returns the display names of everyone online, sorted.
func (w *World) PlayerNames() []string {
	w.mu.RLock()
	names := make([]string, 0, len(w.players))
	for _, p := range w.players {
		names = append(names, p.name)
	}
	w.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Occupants returns the names of everyone in the room except the
// viewer, sorted. The result is a copy, never a live view.
func (w *World) Occupants(roomId storage.Identifier, excludeSession string) []string {
	w.mu.RLock()
	ri, ok := w.rooms[roomId]
	if !ok {
		w.mu.RUnlock()
		return nil
	}
	names := make([]string, 0, len(ri.occupants))
	for id, p := range ri.occupants {
		if id == excludeSession {
			continue
		}
		names = append(names, p.name)
	}
	w.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Broadcast delivers message to every occupant of the room except the
// excluded session. Sinks are collected under the lock and invoked
// after it is released so a slow recipient cannot stall the world. A
// failed delivery is logged and does not stop the others.
func (w *World) Broadcast(roomId storage.Identifier, message string, excludeSession string) {
	w.mu.RLock()
	ri, ok := w.rooms[roomId]
	if !ok {
		w.mu.RUnlock()
		return
	}
	type recipient struct {
		sessionId string
		sink      Sink
	}
	recipients := make([]recipient, 0, len(ri.occupants))
	for id, p := range ri.occupants {
		if id == excludeSession {
			continue
		}
		recipients = append(recipients, recipient{sessionId: id, sink: p.sink})
	}
	w.mu.RUnlock()

	for _, r := range recipients {
		if err := r.sink.Send(message); err != nil {
			slog.Warn("delivering room broadcast", "session", r.sessionId, "room", roomId, "error", err)
		}
	}
}

// SendTo delivers one line to a single registered player.
func (w *World) SendTo(sessionId, message string) error {
	w.mu.RLock()
	p, ok := w.players[sessionId]
	w.mu.RUnlock()

	if !ok {
		return ErrPlayerNotFound
	}
	return p.sink.Send(message)
}
