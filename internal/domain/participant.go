package domain

import "time"

// Participant describes a member of a room as reported by the provider.
type Participant struct {
	Identity    string    `json:"identity"`
	Name        string    `json:"name"`
	JoinedAt    time.Time `json:"joined_at"`
	IsPublisher bool      `json:"is_publisher"`
	TrackCount  int       `json:"track_count"`
}

// Capabilities is the fixed grant set carried by an access token.
type Capabilities struct {
	CanPublishAudio bool `json:"can_publish_audio"`
	CanPublishVideo bool `json:"can_publish_video"`
	CanPublishData  bool `json:"can_publish_data"`
	CanSubscribe    bool `json:"can_subscribe"`
	RoomJoin        bool `json:"room_join"`
}

// CapabilitiesFor maps the host flag to the grant set: hosts publish,
// viewers only subscribe. Everyone may join and subscribe.
func CapabilitiesFor(isHost bool) Capabilities {
	return Capabilities{
		CanPublishAudio: isHost,
		CanPublishVideo: isHost,
		CanPublishData:  isHost,
		CanSubscribe:    true,
		RoomJoin:        true,
	}
}
