// Package identity reads the participant token a stage session is created
// with.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	PARTICIPANT_ID_CLAIM  = "participant_id"
	TOPIC_CLAIM           = "topic"
	ENDPOINT_CLAIM        = "endpoint"
	CAPABILITIES_CLAIM    = "capabilities"
	ALLOW_PUBLISH_CLAIM   = "allow_publish"
	ALLOW_SUBSCRIBE_CLAIM = "allow_subscribe"
)

type ParticipantToken struct {
	ParticipantID  string
	Topic          string
	Endpoint       string
	AllowPublish   bool
	AllowSubscribe bool
	ExpiresAt      time.Time
	Raw            string
}

func (t *ParticipantToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

type TokenParser struct {
	key jwk.Key
}

// Parse validates the token claims. The signature is only checked when the
// parser was created with a key.
func (p *TokenParser) Parse(raw string) (*ParticipantToken, error) {
	if raw == "" {
		return nil, ErrTokenEmpty
	}

	options := []jwt.ParseOption{jwt.WithValidate(true)}
	if p.key != nil {
		options = append(options, jwt.WithKey(jwa.RS256, p.key))
	} else {
		options = append(options, jwt.WithVerify(false))
	}

	token, err := jwt.ParseString(raw, options...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, errors.Join(ErrTokenExpired, err)
		}
		return nil, errors.Join(ErrTokenInvalid, err)
	}

	result := &ParticipantToken{
		ExpiresAt: token.Expiration(),
		Raw:       raw,
	}

	if result.ParticipantID, err = stringClaim(token, PARTICIPANT_ID_CLAIM, true); err != nil {
		return nil, err
	}
	if result.Topic, err = stringClaim(token, TOPIC_CLAIM, true); err != nil {
		return nil, err
	}
	if result.Endpoint, err = stringClaim(token, ENDPOINT_CLAIM, false); err != nil {
		return nil, err
	}

	// Without the capabilities claim the participant may do everything.
	result.AllowPublish, result.AllowSubscribe = true, true
	if value, exist := token.Get(CAPABILITIES_CLAIM); exist {
		capabilities, ok := value.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s is not an object", ErrTokenInvalid, CAPABILITIES_CLAIM)
		}
		if result.AllowPublish, err = boolCapability(capabilities, ALLOW_PUBLISH_CLAIM); err != nil {
			return nil, err
		}
		if result.AllowSubscribe, err = boolCapability(capabilities, ALLOW_SUBSCRIBE_CLAIM); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func stringClaim(token jwt.Token, name string, required bool) (string, error) {
	value, exist := token.Get(name)
	if !exist {
		if required {
			return "", fmt.Errorf("%w: %s", ErrMissingClaim, name)
		}
		return "", nil
	}

	str, ok := value.(string)
	if !ok || (required && str == "") {
		return "", fmt.Errorf("%w: %s", ErrTokenInvalid, name)
	}
	return str, nil
}

func boolCapability(capabilities map[string]interface{}, name string) (bool, error) {
	value, exist := capabilities[name]
	if !exist {
		return false, nil
	}
	allowed, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s is not a bool", ErrTokenInvalid, name)
	}
	return allowed, nil
}

// NewTokenParser accepts an optional JWK used to verify the signature. A
// private key is reduced to its public part.
func NewTokenParser(jwkMessage string) (*TokenParser, error) {
	if jwkMessage == "" {
		return &TokenParser{}, nil
	}

	key, err := jwk.ParseKey([]byte(jwkMessage))
	if err != nil {
		return nil, errors.Join(ErrInvalidSignKey, err)
	}

	public, err := key.PublicKey()
	if err != nil {
		return nil, errors.Join(ErrInvalidSignKey, err)
	}

	return &TokenParser{key: public}, nil
}
