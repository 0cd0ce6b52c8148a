package app

import (
	"time"

	"github.com/livekit/protocol/auth"
	"github.com/pkg/errors"

	"github.com/avrebrov/roomcast/internal/core"
	"github.com/avrebrov/roomcast/internal/domain"
)

// IssuerImpl mints provider-verifiable JWTs signed with the shared API
// key/secret pair. Hosts get publish grants, viewers subscribe only.
type IssuerImpl struct {
	apiKey    string
	apiSecret string
	ttl       time.Duration
}

func NewIssuer(apiKey, apiSecret string, ttl time.Duration) core.TokenIssuer {
	return &IssuerImpl{apiKey: apiKey, apiSecret: apiSecret, ttl: ttl}
}

func (i *IssuerImpl) Mint(identity string, room domain.RoomName, isHost bool) (string, domain.Capabilities, error) {
	caps := domain.CapabilitiesFor(isHost)
	if i.apiKey == "" || i.apiSecret == "" {
		return "", caps, errors.Wrap(core.ErrSigning, "api key/secret not configured")
	}

	grant := &auth.VideoGrant{
		RoomJoin: caps.RoomJoin,
		Room:     string(room),
	}
	grant.SetCanPublish(caps.CanPublishAudio || caps.CanPublishVideo)
	grant.SetCanSubscribe(caps.CanSubscribe)
	grant.SetCanPublishData(caps.CanPublishData)

	at := auth.NewAccessToken(i.apiKey, i.apiSecret).
		SetIdentity(identity).
		SetName(identity).
		SetVideoGrant(grant).
		SetValidFor(i.ttl)

	token, err := at.ToJWT()
	if err != nil {
		return "", caps, errors.Wrapf(core.ErrSigning, "sign token: %v", err)
	}
	return token, caps, nil
}
