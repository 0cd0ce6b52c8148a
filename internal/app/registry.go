package app

import (
	"sync"

	"github.com/avrebrov/roomcast/internal/core"
	"github.com/avrebrov/roomcast/internal/domain"
)

// RegistryImpl keeps the local room and participant bookkeeping. The outer
// RWMutex only guards the map itself; each room carries its own lock so the
// capacity check-and-insert is atomic per room without serializing the world.
type RegistryImpl struct {
	mu    sync.RWMutex
	rooms map[domain.RoomName]*roomEntry
}

type roomEntry struct {
	mu      sync.Mutex
	room    domain.Room
	order   []string
	members map[string]struct{}
}

func NewRegistry() core.RoomRegistry {
	return &RegistryImpl{rooms: make(map[domain.RoomName]*roomEntry)}
}

func (r *RegistryImpl) CreateRoom(room domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.Name]; ok {
		return core.ErrDuplicateRoom
	}
	r.rooms[room.Name] = &roomEntry{
		room:    room,
		members: make(map[string]struct{}),
	}
	return nil
}

func (r *RegistryImpl) GetRoom(name domain.RoomName) (domain.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.rooms[name]
	if !ok {
		return domain.Room{}, false
	}
	return entry.room, true
}

func (r *RegistryImpl) DeleteRoom(name domain.RoomName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, name)
}

func (r *RegistryImpl) AddParticipant(name domain.RoomName, identity string) (int, error) {
	r.mu.RLock()
	entry, ok := r.rooms[name]
	r.mu.RUnlock()
	if !ok {
		return 0, core.ErrRoomNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if _, present := entry.members[identity]; present {
		return len(entry.order), nil
	}
	if len(entry.order) >= entry.room.MaxParticipants {
		return len(entry.order), core.ErrRoomFull
	}
	entry.members[identity] = struct{}{}
	entry.order = append(entry.order, identity)
	return len(entry.order), nil
}

func (r *RegistryImpl) RemoveParticipant(name domain.RoomName, identity string) {
	r.mu.RLock()
	entry, ok := r.rooms[name]
	r.mu.RUnlock()
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if _, present := entry.members[identity]; !present {
		return
	}
	delete(entry.members, identity)
	for i, id := range entry.order {
		if id == identity {
			entry.order = append(entry.order[:i], entry.order[i+1:]...)
			break
		}
	}
}

func (r *RegistryImpl) Participants(name domain.RoomName) []string {
	r.mu.RLock()
	entry, ok := r.rooms[name]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	out := make([]string, len(entry.order))
	copy(out, entry.order)
	return out
}
