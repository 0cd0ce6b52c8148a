package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/avrebrov/roomcast/internal/app"
	"github.com/avrebrov/roomcast/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Streams *app.UpdateStreamer
}

type updateFrame struct {
	Type string              `json:"type"`
	Data domain.RoomSnapshot `json:"data"`
}

// HandleRoomUpdates upgrades the connection and pushes room snapshots until
// the client disconnects or the room disappears from the provider.
func (ctl *Controller) HandleRoomUpdates(ctx context.Context, c *gin.Context) {
	name := domain.RoomName(c.Param("room_name"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Str("room", string(name)).Msg("upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The read pump exists only to notice the peer closing.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log.Info().Str("module", "adapters.ws").Str("room", string(name)).Msg("update subscriber connected")

	updates := ctl.Streams.Subscribe(ctx, name)
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("set write deadline")
				return
			}
			if err := conn.WriteJSON(updateFrame{Type: "room_update", Data: snap}); err != nil {
				log.Warn().Err(err).Str("module", "adapters.ws").Str("room", string(name)).Msg("write failed, closing")
				return
			}
		}
	}
}
