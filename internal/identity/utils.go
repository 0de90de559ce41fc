package identity

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// RSA256SignKeyPair generates a private JWK used by TokenService and its
// public counterpart accepted by NewTokenParser.
func RSA256SignKeyPair() (private []byte, public []byte, err error) {
	pk, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("unable generate rsa private key. Error: %s", err)
	}

	key, err := jwk.FromRaw(pk)
	if err != nil {
		return nil, nil, fmt.Errorf("unable cast private key to jwk key. Error: %s", err)
	}

	publicKey, err := key.PublicKey()
	if err != nil {
		return nil, nil, fmt.Errorf("unable derive public jwk key. Error: %s", err)
	}

	if private, err = json.Marshal(key); err != nil {
		return nil, nil, fmt.Errorf("unable serialize jwk key as json message. Error: %s", err)
	}
	if public, err = json.Marshal(publicKey); err != nil {
		return nil, nil, fmt.Errorf("unable serialize public jwk key as json message. Error: %s", err)
	}
	return private, public, nil
}
