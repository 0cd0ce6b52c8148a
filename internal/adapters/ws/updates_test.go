package ws_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrebrov/roomcast/internal/adapters/ws"
	"github.com/avrebrov/roomcast/internal/app"
	"github.com/avrebrov/roomcast/internal/core"
	"github.com/avrebrov/roomcast/internal/core/coretest"
)

func TestRoomUpdatesOverWebsocket(t *testing.T) {
	gin.SetMode(gin.TestMode)

	gw := coretest.NewFakeGateway()
	gw.SetRemoteRoom(&core.RemoteRoom{Sid: "RM_1", Name: "demo", NumParticipants: 2})

	ctl := &ws.Controller{
		Streams: &app.UpdateStreamer{Gateway: gw, Interval: 10 * time.Millisecond},
	}

	r := gin.New()
	r.GET("/ws/rooms/:room_name", func(c *gin.Context) {
		ctl.HandleRoomUpdates(context.Background(), c)
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/rooms/demo"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var frame struct {
		Type string `json:"type"`
		Data struct {
			Name            string `json:"name"`
			NumParticipants int    `json:"num_participants"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "room_update", frame.Type)
	assert.Equal(t, "demo", frame.Data.Name)
	assert.Equal(t, 2, frame.Data.NumParticipants)

	t.Run("server stops pushing once the room disappears", func(t *testing.T) {
		gw.DropRemoteRoom("demo")

		// Drain whatever snapshots were already in flight; the server then
		// ends the stream and closes the connection.
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		for {
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
		}
	})
}
