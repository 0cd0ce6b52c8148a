package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/avrebrov/roomcast/internal/core"
	"github.com/avrebrov/roomcast/internal/domain"
	"github.com/avrebrov/roomcast/internal/metrics"
)

// Coordinator drives room lifecycles. The provider is called first for any
// state-creating operation; the local registry is only updated after the
// remote side confirmed. The registry participant list is a hint for the
// capacity gate, not the authoritative count.
type Coordinator struct {
	Registry core.RoomRegistry
	Gateway  core.ProviderGateway
	Issuer   core.TokenIssuer

	// ClientURL is the provider endpoint handed to joining clients.
	ClientURL string
	// DefaultMaxParticipants caps rooms the provider knows but we never
	// created (e.g. after a restart).
	DefaultMaxParticipants int
}

type CreateRoomParams struct {
	Name            domain.RoomName
	MaxParticipants int
	EmptyTimeout    time.Duration
	AudioEnabled    bool
	VideoEnabled    bool
}

// JoinGrant is everything a client needs to connect to the provider.
type JoinGrant struct {
	Token        string
	URL          string
	Capabilities domain.Capabilities
}

// RoomInfo merges the provider's authoritative view with local metadata.
type RoomInfo struct {
	Name            domain.RoomName
	Sid             string
	NumParticipants int
	MaxParticipants int
	CreationTime    time.Time
	Metadata        string
}

type RoomDetails struct {
	Room         RoomInfo
	Participants []domain.Participant
}

type ModerationAction int

const (
	ActionKick ModerationAction = iota
	ActionMute
	ActionUnmute
)

type roomMetadata struct {
	AudioEnabled bool   `json:"audio_enabled"`
	VideoEnabled bool   `json:"video_enabled"`
	CreatedAt    string `json:"created_at"`
}

func (c *Coordinator) CreateRoom(ctx context.Context, params CreateRoomParams) (domain.Room, error) {
	if params.Name == "" {
		return domain.Room{}, errors.Wrap(core.ErrValidation, "room name is required")
	}
	if params.MaxParticipants <= 0 {
		return domain.Room{}, errors.Wrap(core.ErrValidation, "max_participants must be positive")
	}
	if _, exists := c.Registry.GetRoom(params.Name); exists {
		return domain.Room{}, errors.Wrapf(core.ErrDuplicateRoom, "room %q", params.Name)
	}

	now := time.Now()
	md, _ := json.Marshal(roomMetadata{
		AudioEnabled: params.AudioEnabled,
		VideoEnabled: params.VideoEnabled,
		CreatedAt:    now.Format(time.RFC3339),
	})

	remote, err := c.Gateway.CreateRemoteRoom(ctx, core.RoomSpec{
		Name:            string(params.Name),
		EmptyTimeout:    params.EmptyTimeout,
		MaxParticipants: params.MaxParticipants,
		Metadata:        string(md),
	})
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("create_room").Inc()
		return domain.Room{}, errors.WithMessagef(err, "create room %q", params.Name)
	}

	room := domain.Room{
		Name:            params.Name,
		Sid:             domain.RoomSid(remote.Sid),
		MaxParticipants: params.MaxParticipants,
		CreatedAt:       now,
		AudioEnabled:    params.AudioEnabled,
		VideoEnabled:    params.VideoEnabled,
	}
	if err := c.Registry.CreateRoom(room); err != nil {
		// Lost a race with a concurrent create for the same name.
		return domain.Room{}, errors.Wrapf(core.ErrDuplicateRoom, "room %q", params.Name)
	}

	metrics.RoomsCreated.Inc()
	log.Info().Str("module", "app").Str("room", string(room.Name)).Str("sid", string(room.Sid)).Msg("room created")
	return room, nil
}

// JoinRoom admits identity into the room and mints its access token. The
// capacity reservation happens in AddParticipant after the mint, so a lost
// race discards the token instead of overfilling the room.
func (c *Coordinator) JoinRoom(ctx context.Context, name domain.RoomName, identity string, isHost bool) (JoinGrant, error) {
	if identity == "" {
		return JoinGrant{}, errors.Wrap(core.ErrValidation, "participant_name is required")
	}

	room, ok := c.Registry.GetRoom(name)
	if !ok {
		metrics.JoinsRejected.WithLabelValues("not_found").Inc()
		return JoinGrant{}, errors.Wrapf(core.ErrRoomNotFound, "room %q", name)
	}
	if current := len(c.Registry.Participants(name)); current >= room.MaxParticipants {
		// Fast path; AddParticipant below re-checks under the room lock.
		// Re-joins slip past this check on purpose: they are idempotent.
		if !contains(c.Registry.Participants(name), identity) {
			metrics.JoinsRejected.WithLabelValues("full").Inc()
			return JoinGrant{}, errors.Wrapf(core.ErrRoomFull, "room %q at capacity %d", name, room.MaxParticipants)
		}
	}

	token, caps, err := c.Issuer.Mint(identity, name, isHost)
	if err != nil {
		metrics.JoinsRejected.WithLabelValues("signing").Inc()
		return JoinGrant{}, err
	}

	if _, err := c.Registry.AddParticipant(name, identity); err != nil {
		metrics.JoinsRejected.WithLabelValues("full").Inc()
		return JoinGrant{}, errors.WithMessagef(err, "join room %q", name)
	}

	metrics.JoinsAdmitted.Inc()
	log.Info().Str("module", "app").Str("room", string(name)).Str("identity", identity).Bool("host", isHost).Msg("participant admitted")
	return JoinGrant{Token: token, URL: c.ClientURL, Capabilities: caps}, nil
}

func (c *Coordinator) GetRoomInfo(ctx context.Context, name domain.RoomName) (RoomDetails, error) {
	remote, err := c.Gateway.GetRemoteRoom(ctx, string(name))
	if err != nil {
		if errors.Is(err, core.ErrRoomNotFound) {
			// Provider is authoritative: drop our stale record.
			c.Registry.DeleteRoom(name)
			return RoomDetails{}, errors.WithMessagef(err, "room %q", name)
		}
		metrics.ProviderErrors.WithLabelValues("get_room").Inc()
		return RoomDetails{}, errors.WithMessagef(err, "get room %q", name)
	}

	remoteParts, err := c.Gateway.ListRemoteParticipants(ctx, string(name))
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("list_participants").Inc()
		return RoomDetails{}, errors.WithMessagef(err, "list participants of %q", name)
	}

	info := c.enrich(remote)
	participants := make([]domain.Participant, 0, len(remoteParts))
	for _, p := range remoteParts {
		participants = append(participants, domain.Participant{
			Identity:    p.Identity,
			Name:        p.Name,
			JoinedAt:    p.JoinedAt,
			IsPublisher: p.TrackCount > 0,
			TrackCount:  p.TrackCount,
		})
	}
	return RoomDetails{Room: info, Participants: participants}, nil
}

func (c *Coordinator) ListRooms(ctx context.Context) ([]RoomInfo, error) {
	remotes, err := c.Gateway.ListRemoteRooms(ctx)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("list_rooms").Inc()
		return nil, errors.WithMessage(err, "list rooms")
	}

	out := make([]RoomInfo, 0, len(remotes))
	for _, remote := range remotes {
		out = append(out, c.enrich(remote))
	}
	return out, nil
}

// DeleteRoom removes the room remotely, then locally no matter what: the
// remote room may already be gone (idle timeout) and a stale local record
// would otherwise block the name forever.
func (c *Coordinator) DeleteRoom(ctx context.Context, name domain.RoomName) error {
	err := c.Gateway.DeleteRemoteRoom(ctx, string(name))
	c.Registry.DeleteRoom(name)

	if err != nil && !errors.Is(err, core.ErrRoomNotFound) {
		metrics.ProviderErrors.WithLabelValues("delete_room").Inc()
		return errors.WithMessagef(err, "delete room %q", name)
	}

	metrics.RoomsDeleted.Inc()
	log.Info().Str("module", "app").Str("room", string(name)).Msg("room deleted")
	return nil
}

func (c *Coordinator) ModerateParticipant(ctx context.Context, name domain.RoomName, identity string, action ModerationAction) error {
	if identity == "" {
		return errors.Wrap(core.ErrValidation, "participant identity is required")
	}

	switch action {
	case ActionKick:
		if err := c.Gateway.RemoveRemoteParticipant(ctx, string(name), identity); err != nil {
			metrics.ProviderErrors.WithLabelValues("remove_participant").Inc()
			return errors.WithMessagef(err, "kick %q from %q", identity, name)
		}
		c.Registry.RemoveParticipant(name, identity)
		log.Info().Str("module", "app").Str("room", string(name)).Str("identity", identity).Msg("participant kicked")
		return nil
	case ActionMute, ActionUnmute:
		muted := action == ActionMute
		// Empty track sid means all published tracks.
		if err := c.Gateway.SetMuted(ctx, string(name), identity, "", muted); err != nil {
			metrics.ProviderErrors.WithLabelValues("mute_participant").Inc()
			return errors.WithMessagef(err, "mute %q in %q", identity, name)
		}
		return nil
	default:
		return errors.Wrapf(core.ErrValidation, "unknown moderation action %d", action)
	}
}

// enrich overlays local metadata onto a provider room snapshot. Rooms the
// provider knows but we never tracked fall back to defaults.
func (c *Coordinator) enrich(remote *core.RemoteRoom) RoomInfo {
	info := RoomInfo{
		Name:            domain.RoomName(remote.Name),
		Sid:             remote.Sid,
		NumParticipants: remote.NumParticipants,
		MaxParticipants: c.DefaultMaxParticipants,
		CreationTime:    remote.CreationTime,
		Metadata:        remote.Metadata,
	}
	if local, ok := c.Registry.GetRoom(domain.RoomName(remote.Name)); ok {
		info.MaxParticipants = local.MaxParticipants
		info.CreationTime = local.CreatedAt
	}
	return info
}

func contains(ids []string, identity string) bool {
	for _, id := range ids {
		if id == identity {
			return true
		}
	}
	return false
}
