package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/avrebrov/roomcast/internal/adapters/http"
	"github.com/avrebrov/roomcast/internal/app"
	"github.com/avrebrov/roomcast/internal/core"
	"github.com/avrebrov/roomcast/internal/core/coretest"
)

func newTestRouter(gw core.ProviderGateway) *gin.Engine {
	gin.SetMode(gin.TestMode)

	coord := &app.Coordinator{
		Registry:               app.NewRegistry(),
		Gateway:                gw,
		Issuer:                 app.NewIssuer("key", "secret", time.Hour),
		ClientURL:              "ws://localhost:7880",
		DefaultMaxParticipants: 100,
	}
	h := &adapter.Handlers{
		Coordinator:            coord,
		DefaultMaxParticipants: 100,
		DefaultEmptyTimeout:    5 * time.Minute,
	}

	r := gin.New()
	r.POST("/rooms/create", h.CreateRoom)
	r.GET("/rooms", h.ListRooms)
	r.GET("/rooms/:room_name", h.GetRoomInfo)
	r.DELETE("/rooms/:room_name", h.DeleteRoom)
	r.POST("/rooms/:room_name/join", h.JoinRoom)
	r.POST("/rooms/:room_name/participants/:identity/kick", h.KickParticipant)
	r.POST("/rooms/:room_name/participants/:identity/mute", h.MuteParticipant)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRoomEndpoint(t *testing.T) {
	r := newTestRouter(coretest.NewFakeGateway())

	w := doJSON(r, http.MethodPost, "/rooms/create", `{"name":"demo","max_participants":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Success bool `json:"success"`
		Room    struct {
			Name            string `json:"name"`
			Sid             string `json:"sid"`
			MaxParticipants int    `json:"max_participants"`
		} `json:"room"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "demo", res.Room.Name)
	assert.NotEmpty(t, res.Room.Sid)
	assert.Equal(t, 2, res.Room.MaxParticipants)

	t.Run("duplicate is 400", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/rooms/create", `{"name":"demo"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing name is 400", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/rooms/create", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestJoinRoomEndpoint(t *testing.T) {
	r := newTestRouter(coretest.NewFakeGateway())
	require.Equal(t, http.StatusOK,
		doJSON(r, http.MethodPost, "/rooms/create", `{"name":"demo","max_participants":2}`).Code)

	w := doJSON(r, http.MethodPost, "/rooms/demo/join", `{"participant_name":"a","is_host":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Success     bool   `json:"success"`
		Token       string `json:"token"`
		URL         string `json:"url"`
		RoomName    string `json:"room_name"`
		Permissions struct {
			CanPublishAudio bool `json:"can_publish_audio"`
			CanSubscribe    bool `json:"can_subscribe"`
		} `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ws://localhost:7880", res.URL)
	assert.Equal(t, "demo", res.RoomName)
	assert.True(t, res.Permissions.CanPublishAudio)
	assert.True(t, res.Permissions.CanSubscribe)

	t.Run("viewer lacks publish permission", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/rooms/demo/join", `{"participant_name":"b"}`)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.False(t, res.Permissions.CanPublishAudio)
	})

	t.Run("room full is 400", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/rooms/demo/join", `{"participant_name":"c"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown room is 404", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/rooms/ghost/join", `{"participant_name":"a"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing participant_name is 400", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/rooms/demo/join", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListAndGetRoomEndpoints(t *testing.T) {
	gw := coretest.NewFakeGateway()
	r := newTestRouter(gw)
	require.Equal(t, http.StatusOK,
		doJSON(r, http.MethodPost, "/rooms/create", `{"name":"demo","max_participants":2}`).Code)

	t.Run("list includes created room", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/rooms", "")
		require.Equal(t, http.StatusOK, w.Code)

		var rooms []struct {
			Name            string `json:"name"`
			MaxParticipants int    `json:"max_participants"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
		require.Len(t, rooms, 1)
		assert.Equal(t, "demo", rooms[0].Name)
		assert.Equal(t, 2, rooms[0].MaxParticipants)
	})

	t.Run("get returns room with participants", func(t *testing.T) {
		gw.SetRemoteParticipants("demo", []*core.RemoteParticipant{
			{Identity: "a", Name: "a", JoinedAt: time.Now(), TrackCount: 1},
		})

		w := doJSON(r, http.MethodGet, "/rooms/demo", "")
		require.Equal(t, http.StatusOK, w.Code)

		var res struct {
			Room struct {
				Name string `json:"name"`
			} `json:"room"`
			Participants []struct {
				Identity    string `json:"identity"`
				IsPublisher bool   `json:"is_publisher"`
			} `json:"participants"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "demo", res.Room.Name)
		require.Len(t, res.Participants, 1)
		assert.True(t, res.Participants[0].IsPublisher)
	})

	t.Run("get for provider-absent room is 404", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/rooms/ghost", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteRoomEndpoint(t *testing.T) {
	r := newTestRouter(coretest.NewFakeGateway())
	require.Equal(t, http.StatusOK,
		doJSON(r, http.MethodPost, "/rooms/create", `{"name":"demo"}`).Code)

	w := doJSON(r, http.MethodDelete, "/rooms/demo", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deleted successfully")

	t.Run("name is reusable after delete", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/rooms/create", `{"name":"demo"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestModerationEndpoints(t *testing.T) {
	gw := coretest.NewFakeGateway()
	r := newTestRouter(gw)
	require.Equal(t, http.StatusOK,
		doJSON(r, http.MethodPost, "/rooms/create", `{"name":"demo"}`).Code)

	t.Run("kick", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/rooms/demo/participants/a/kick", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"demo/a"}, gw.Removed)
	})

	t.Run("mute defaults to muted", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/rooms/demo/participants/a/mute", "")
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, gw.Muted, 1)
		assert.True(t, gw.Muted[0].Muted)
	})

	t.Run("unmute via query", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/rooms/demo/participants/a/mute?mute_audio=false", "")
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, gw.Muted, 2)
		assert.False(t, gw.Muted[1].Muted)
	})
}
