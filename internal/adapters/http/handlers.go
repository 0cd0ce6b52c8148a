package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/avrebrov/roomcast/internal/app"
	"github.com/avrebrov/roomcast/internal/core"
	"github.com/avrebrov/roomcast/internal/domain"
)

type Handlers struct {
	Coordinator *app.Coordinator

	DefaultMaxParticipants int
	DefaultEmptyTimeout    time.Duration
}

type createRoomRequest struct {
	Name            string `json:"name" binding:"required"`
	MaxParticipants int    `json:"max_participants"`
	EmptyTimeout    int    `json:"empty_timeout"`
	AudioEnabled    *bool  `json:"audio_enabled"`
	VideoEnabled    *bool  `json:"video_enabled"`
}

type joinRoomRequest struct {
	ParticipantName string          `json:"participant_name" binding:"required"`
	IsHost          bool            `json:"is_host"`
	Permissions     map[string]bool `json:"permissions"`
}

type roomInfoResponse struct {
	Name            string    `json:"name"`
	Sid             string    `json:"sid"`
	NumParticipants int       `json:"num_participants"`
	MaxParticipants int       `json:"max_participants"`
	CreationTime    time.Time `json:"creation_time"`
	Metadata        string    `json:"metadata,omitempty"`
}

func (h *Handlers) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid room name"})
		return
	}
	if req.MaxParticipants == 0 {
		req.MaxParticipants = h.DefaultMaxParticipants
	}
	emptyTimeout := h.DefaultEmptyTimeout
	if req.EmptyTimeout > 0 {
		emptyTimeout = time.Duration(req.EmptyTimeout) * time.Second
	}

	room, err := h.Coordinator.CreateRoom(c.Request.Context(), app.CreateRoomParams{
		Name:            domain.RoomName(req.Name),
		MaxParticipants: req.MaxParticipants,
		EmptyTimeout:    emptyTimeout,
		AudioEnabled:    boolOr(req.AudioEnabled, true),
		VideoEnabled:    boolOr(req.VideoEnabled, true),
	})
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"room": gin.H{
			"name":             string(room.Name),
			"sid":              string(room.Sid),
			"max_participants": room.MaxParticipants,
			"created_at":       room.CreatedAt.Format(time.RFC3339),
		},
	})
}

func (h *Handlers) JoinRoom(c *gin.Context) {
	roomName := domain.RoomName(c.Param("room_name"))

	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid participant_name"})
		return
	}

	grant, err := h.Coordinator.JoinRoom(c.Request.Context(), roomName, req.ParticipantName, req.IsHost)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"token":            grant.Token,
		"url":              grant.URL,
		"room_name":        string(roomName),
		"participant_name": req.ParticipantName,
		"permissions":      grant.Capabilities,
	})
}

func (h *Handlers) ListRooms(c *gin.Context) {
	rooms, err := h.Coordinator.ListRooms(c.Request.Context())
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	out := make([]roomInfoResponse, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomInfoResponse(room))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) GetRoomInfo(c *gin.Context) {
	roomName := domain.RoomName(c.Param("room_name"))

	details, err := h.Coordinator.GetRoomInfo(c.Request.Context(), roomName)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room":         toRoomInfoResponse(details.Room),
		"participants": details.Participants,
	})
}

func (h *Handlers) DeleteRoom(c *gin.Context) {
	roomName := domain.RoomName(c.Param("room_name"))

	if err := h.Coordinator.DeleteRoom(c.Request.Context(), roomName); err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Room %s deleted successfully", roomName),
	})
}

func (h *Handlers) KickParticipant(c *gin.Context) {
	roomName := domain.RoomName(c.Param("room_name"))
	identity := c.Param("identity")

	err := h.Coordinator.ModerateParticipant(c.Request.Context(), roomName, identity, app.ActionKick)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Participant %s removed", identity),
	})
}

func (h *Handlers) MuteParticipant(c *gin.Context) {
	roomName := domain.RoomName(c.Param("room_name"))
	identity := c.Param("identity")

	muteAudio := c.DefaultQuery("mute_audio", "true") == "true"
	action := app.ActionMute
	verb := "muted"
	if !muteAudio {
		action = app.ActionUnmute
		verb = "unmuted"
	}

	err := h.Coordinator.ModerateParticipant(c.Request.Context(), roomName, identity, action)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Participant %s %s", identity, verb),
	})
}

func toRoomInfoResponse(room app.RoomInfo) roomInfoResponse {
	return roomInfoResponse{
		Name:            string(room.Name),
		Sid:             room.Sid,
		NumParticipants: room.NumParticipants,
		MaxParticipants: room.MaxParticipants,
		CreationTime:    room.CreationTime,
		Metadata:        room.Metadata,
	}
}

// respondError maps the error taxonomy onto status codes. Caller-caused
// conditions are 4xx; provider faults use the endpoint's fallback status.
func respondError(c *gin.Context, err error, fallback int) {
	status := fallback
	switch {
	case errors.Is(err, core.ErrRoomNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateRoom),
		errors.Is(err, core.ErrRoomFull),
		errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrSigning):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
