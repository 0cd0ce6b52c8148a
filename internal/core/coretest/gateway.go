package coretest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/avrebrov/roomcast/internal/core"
)

// FakeGateway is an in-memory stand-in for the media provider. Error fields
// let tests inject faults per operation.
type FakeGateway struct {
	mu    sync.Mutex
	rooms map[string]*core.RemoteRoom
	parts map[string][]*core.RemoteParticipant

	CreateErr error
	ListErr   error
	GetErr    error
	DeleteErr error
	RemoveErr error
	MuteErr   error

	Deleted []string
	Removed []string
	Muted   []MuteCall

	sidSeq int
}

type MuteCall struct {
	Room     string
	Identity string
	TrackSid string
	Muted    bool
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		rooms: make(map[string]*core.RemoteRoom),
		parts: make(map[string][]*core.RemoteParticipant),
	}
}

// SetRemoteRoom seeds provider-side state directly, bypassing CreateRemoteRoom.
func (f *FakeGateway) SetRemoteRoom(room *core.RemoteRoom) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[room.Name] = room
}

func (f *FakeGateway) SetRemoteParticipants(room string, parts []*core.RemoteParticipant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.parts[room] = parts
}

// SetGetErr swaps the injected GetRemoteRoom error under the lock, safe to
// call while a poll loop is running.
func (f *FakeGateway) SetGetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetErr = err
}

func (f *FakeGateway) DropRemoteRoom(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rooms, name)
	delete(f.parts, name)
}

func (f *FakeGateway) CreateRemoteRoom(ctx context.Context, spec core.RoomSpec) (*core.RemoteRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.sidSeq++
	room := &core.RemoteRoom{
		Sid:          fmt.Sprintf("RM_%d", f.sidSeq),
		Name:         spec.Name,
		CreationTime: time.Now(),
		Metadata:     spec.Metadata,
	}
	f.rooms[spec.Name] = room
	return room, nil
}

func (f *FakeGateway) ListRemoteRooms(ctx context.Context) ([]*core.RemoteRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]*core.RemoteRoom, 0, len(f.rooms))
	for _, room := range f.rooms {
		out = append(out, room)
	}
	return out, nil
}

func (f *FakeGateway) GetRemoteRoom(ctx context.Context, name string) (*core.RemoteRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	room, ok := f.rooms[name]
	if !ok {
		return nil, errors.Wrapf(core.ErrRoomNotFound, "room %q", name)
	}
	return room, nil
}

func (f *FakeGateway) ListRemoteParticipants(ctx context.Context, room string) ([]*core.RemoteParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.parts[room], nil
}

func (f *FakeGateway) DeleteRemoteRoom(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, ok := f.rooms[name]; !ok {
		return errors.Wrapf(core.ErrRoomNotFound, "room %q", name)
	}
	delete(f.rooms, name)
	delete(f.parts, name)
	f.Deleted = append(f.Deleted, name)
	return nil
}

func (f *FakeGateway) RemoveRemoteParticipant(ctx context.Context, room, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	f.Removed = append(f.Removed, room+"/"+identity)
	kept := f.parts[room][:0]
	for _, p := range f.parts[room] {
		if p.Identity != identity {
			kept = append(kept, p)
		}
	}
	f.parts[room] = kept
	return nil
}

func (f *FakeGateway) SetMuted(ctx context.Context, room, identity, trackSid string, muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MuteErr != nil {
		return f.MuteErr
	}
	f.Muted = append(f.Muted, MuteCall{Room: room, Identity: identity, TrackSid: trackSid, Muted: muted})
	return nil
}
