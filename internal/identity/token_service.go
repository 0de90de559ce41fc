package identity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const _ISSUER = "stage-client"

var _PARTICIPANT_TOKEN_EXPIRES_AFTER = time.Hour

func signToken(pkeyJwsMessage string, headers jws.Headers, token jwt.Token) (string, error) {
	signKey, err := jwk.ParseKey([]byte(pkeyJwsMessage))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidSignKey, err)
	}

	byteToken, err := jwt.Sign(token, jwt.WithKey(jwa.RS256, signKey, jws.WithProtectedHeaders(headers)))
	if err != nil {
		return "", err
	}
	return string(byteToken), nil
}

// TokenService mints participant tokens for local stages and tests.
type TokenService struct {
	expiresAfter time.Duration
}

func (s *TokenService) CreateParticipantToken(participant ParticipantToken, pkeyID uuid.UUID, pkeyJwsMessage string) (string, error) {
	expiresAt := time.Now().Add(s.expiresAfter)

	b := jwt.NewBuilder().
		Issuer(_ISSUER).
		Subject(participant.ParticipantID).
		Expiration(expiresAt).
		Claim(PARTICIPANT_ID_CLAIM, participant.ParticipantID).
		Claim(TOPIC_CLAIM, participant.Topic).
		Claim(CAPABILITIES_CLAIM, map[string]interface{}{
			ALLOW_PUBLISH_CLAIM:   participant.AllowPublish,
			ALLOW_SUBSCRIBE_CLAIM: participant.AllowSubscribe,
		})

	if participant.Endpoint != "" {
		b = b.Claim(ENDPOINT_CLAIM, participant.Endpoint)
	}

	token, err := b.Build()
	if err != nil {
		return "", err
	}

	headers := jws.NewHeaders()
	if err = headers.Set(jws.KeyIDKey, pkeyID.String()); err != nil {
		return "", fmt.Errorf("unable set header `kid`. Error: %s", err)
	}

	return signToken(pkeyJwsMessage, headers, token)
}

func NewTokenService(expiresAfter time.Duration) *TokenService {
	if expiresAfter == 0 {
		expiresAfter = _PARTICIPANT_TOKEN_EXPIRES_AFTER
	}
	return &TokenService{expiresAfter: expiresAfter}
}
