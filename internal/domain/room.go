package domain

import "time"

type (
	RoomName string
	RoomSid  string
)

// Room is the local record of a session created through us. Everything in it
// is fixed at creation time; the provider owns the live participant count.
type Room struct {
	Name            RoomName
	Sid             RoomSid
	MaxParticipants int
	CreatedAt       time.Time
	AudioEnabled    bool
	VideoEnabled    bool
}

// RoomSnapshot is a point-in-time view of a room as the provider reports it.
type RoomSnapshot struct {
	Name            RoomName  `json:"name"`
	NumParticipants int       `json:"num_participants"`
	Timestamp       time.Time `json:"timestamp"`
}
