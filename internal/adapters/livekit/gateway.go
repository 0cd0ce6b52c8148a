package livekit

import (
	"context"
	"time"

	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/pkg/errors"
	"github.com/twitchtv/twirp"

	"github.com/avrebrov/roomcast/internal/core"
)

// Gateway adapts the LiveKit room service API to the ProviderGateway
// contract. SDK responses are copied into plain snapshots so nothing above
// this package holds a live handle into the SDK.
type Gateway struct {
	svc *lksdk.RoomServiceClient
}

func NewGateway(url, apiKey, apiSecret string) *Gateway {
	return &Gateway{svc: lksdk.NewRoomServiceClient(url, apiKey, apiSecret)}
}

func (g *Gateway) CreateRemoteRoom(ctx context.Context, spec core.RoomSpec) (*core.RemoteRoom, error) {
	room, err := g.svc.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:            spec.Name,
		EmptyTimeout:    uint32(spec.EmptyTimeout / time.Second),
		MaxParticipants: uint32(spec.MaxParticipants),
		Metadata:        spec.Metadata,
	})
	if err != nil {
		return nil, translate("create room", err)
	}
	return snapshotRoom(room), nil
}

func (g *Gateway) ListRemoteRooms(ctx context.Context) ([]*core.RemoteRoom, error) {
	res, err := g.svc.ListRooms(ctx, &livekit.ListRoomsRequest{})
	if err != nil {
		return nil, translate("list rooms", err)
	}
	out := make([]*core.RemoteRoom, 0, len(res.Rooms))
	for _, room := range res.Rooms {
		out = append(out, snapshotRoom(room))
	}
	return out, nil
}

func (g *Gateway) GetRemoteRoom(ctx context.Context, name string) (*core.RemoteRoom, error) {
	res, err := g.svc.ListRooms(ctx, &livekit.ListRoomsRequest{Names: []string{name}})
	if err != nil {
		return nil, translate("get room", err)
	}
	if len(res.Rooms) == 0 {
		return nil, errors.Wrapf(core.ErrRoomNotFound, "room %q", name)
	}
	return snapshotRoom(res.Rooms[0]), nil
}

func (g *Gateway) ListRemoteParticipants(ctx context.Context, room string) ([]*core.RemoteParticipant, error) {
	res, err := g.svc.ListParticipants(ctx, &livekit.ListParticipantsRequest{Room: room})
	if err != nil {
		return nil, translate("list participants", err)
	}
	out := make([]*core.RemoteParticipant, 0, len(res.Participants))
	for _, p := range res.Participants {
		out = append(out, &core.RemoteParticipant{
			Identity:   p.Identity,
			Name:       p.Name,
			JoinedAt:   time.Unix(p.JoinedAt, 0),
			TrackCount: len(p.Tracks),
		})
	}
	return out, nil
}

func (g *Gateway) DeleteRemoteRoom(ctx context.Context, name string) error {
	_, err := g.svc.DeleteRoom(ctx, &livekit.DeleteRoomRequest{Room: name})
	return translate("delete room", err)
}

func (g *Gateway) RemoveRemoteParticipant(ctx context.Context, room, identity string) error {
	_, err := g.svc.RemoveParticipant(ctx, &livekit.RoomParticipantIdentity{
		Room:     room,
		Identity: identity,
	})
	return translate("remove participant", err)
}

func (g *Gateway) SetMuted(ctx context.Context, room, identity, trackSid string, muted bool) error {
	_, err := g.svc.MutePublishedTrack(ctx, &livekit.MuteRoomTrackRequest{
		Room:     room,
		Identity: identity,
		TrackSid: trackSid,
		Muted:    muted,
	})
	return translate("mute track", err)
}

func snapshotRoom(room *livekit.Room) *core.RemoteRoom {
	return &core.RemoteRoom{
		Sid:             room.Sid,
		Name:            room.Name,
		NumParticipants: int(room.NumParticipants),
		CreationTime:    time.Unix(room.CreationTime, 0),
		Metadata:        room.Metadata,
	}
}

// translate folds SDK errors into the gateway taxonomy. LiveKit's room
// service speaks twirp, so semantic failures arrive as twirp errors;
// anything else is a transport-level fault.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var te twirp.Error
	if errors.As(err, &te) {
		switch te.Code() {
		case twirp.NotFound:
			return errors.Wrapf(core.ErrRoomNotFound, "%s: %s", op, te.Msg())
		case twirp.Unavailable, twirp.DeadlineExceeded:
			return errors.Wrapf(core.ErrProviderUnavailable, "%s: %s", op, te.Msg())
		default:
			return errors.Wrapf(core.ErrProviderRejected, "%s: %s", op, te.Msg())
		}
	}
	return errors.Wrapf(core.ErrProviderUnavailable, "%s: %v", op, err)
}
