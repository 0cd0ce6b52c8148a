package core

import (
	"context"
	"time"

	"github.com/avrebrov/roomcast/internal/domain"
)

// RoomRegistry is the local source of truth for rooms created through this
// service. It only tracks bookkeeping: the provider remains authoritative for
// room existence and live participant counts.
type RoomRegistry interface {
	// CreateRoom inserts a new room record. Fails with ErrDuplicateRoom if
	// the name is already tracked.
	CreateRoom(room domain.Room) error
	GetRoom(name domain.RoomName) (domain.Room, bool)
	// DeleteRoom drops the room and its participant set. No-op when absent.
	DeleteRoom(name domain.RoomName)
	// AddParticipant admits identity into the room, enforcing capacity
	// atomically. Re-adding a present identity is a no-op that succeeds.
	// Returns the participant count after the call.
	AddParticipant(name domain.RoomName, identity string) (int, error)
	RemoveParticipant(name domain.RoomName, identity string)
	Participants(name domain.RoomName) []string
}

// TokenIssuer mints capability-scoped access tokens verifiable by the
// provider. Pure: never touches the registry or the network.
type TokenIssuer interface {
	Mint(identity string, room domain.RoomName, isHost bool) (string, domain.Capabilities, error)
}

// RemoteRoom is a plain snapshot of provider-side room state. Never a live
// handle into the provider SDK.
type RemoteRoom struct {
	Sid             string
	Name            string
	NumParticipants int
	CreationTime    time.Time
	Metadata        string
}

type RemoteParticipant struct {
	Identity   string
	Name       string
	JoinedAt   time.Time
	TrackCount int
}

// RoomSpec is what we ask the provider to create.
type RoomSpec struct {
	Name            string
	EmptyTimeout    time.Duration
	MaxParticipants int
	Metadata        string
}

// ProviderGateway wraps the external media provider's management API. Every
// call may fail with ErrProviderUnavailable or ErrProviderRejected; absence
// is reported as ErrRoomNotFound.
type ProviderGateway interface {
	CreateRemoteRoom(ctx context.Context, spec RoomSpec) (*RemoteRoom, error)
	ListRemoteRooms(ctx context.Context) ([]*RemoteRoom, error)
	GetRemoteRoom(ctx context.Context, name string) (*RemoteRoom, error)
	ListRemoteParticipants(ctx context.Context, room string) ([]*RemoteParticipant, error)
	DeleteRemoteRoom(ctx context.Context, name string) error
	RemoveRemoteParticipant(ctx context.Context, room, identity string) error
	SetMuted(ctx context.Context, room, identity, trackSid string, muted bool) error
}
