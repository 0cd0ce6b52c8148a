package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/avrebrov/roomcast/internal/core"
	"github.com/avrebrov/roomcast/internal/domain"
	"github.com/avrebrov/roomcast/internal/metrics"
)

// UpdateStreamer hands out periodic room snapshots. Each subscription polls
// the provider on its own ticker; subscribers never share state and a fresh
// snapshot is pulled on every tick.
type UpdateStreamer struct {
	Gateway  core.ProviderGateway
	Interval time.Duration
}

// Subscribe starts polling for roomName and returns the snapshot stream. The
// channel closes when ctx is cancelled or the provider confirms the room is
// gone. Provider faults are transient: logged, then retried next tick.
func (s *UpdateStreamer) Subscribe(ctx context.Context, name domain.RoomName) <-chan domain.RoomSnapshot {
	ch := make(chan domain.RoomSnapshot, 1)
	go s.poll(ctx, name, ch)
	return ch
}

func (s *UpdateStreamer) poll(ctx context.Context, name domain.RoomName, ch chan<- domain.RoomSnapshot) {
	sub := uuid.NewString()[:8]
	metrics.UpdateSubscribers.Inc()
	defer func() {
		metrics.UpdateSubscribers.Dec()
		close(ch)
		log.Info().Str("module", "updates").Str("sub", sub).Str("room", string(name)).Msg("subscription closed")
	}()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remote, err := s.Gateway.GetRemoteRoom(ctx, string(name))
			if errors.Is(err, core.ErrRoomNotFound) {
				log.Info().Str("module", "updates").Str("sub", sub).Str("room", string(name)).Msg("room gone, ending subscription")
				return
			}
			if err != nil {
				metrics.ProviderErrors.WithLabelValues("poll_room").Inc()
				log.Warn().Err(err).Str("module", "updates").Str("sub", sub).Str("room", string(name)).Msg("poll failed, will retry")
				continue
			}

			snap := domain.RoomSnapshot{
				Name:            name,
				NumParticipants: remote.NumParticipants,
				Timestamp:       time.Now(),
			}
			select {
			case ch <- snap:
			default:
				// Subscriber is behind; drop this tick rather than block.
			}
		}
	}
}
