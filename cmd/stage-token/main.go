// Command stage-token mints a participant token and its verification key for
// a local media server.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/identity"
)

func main() {
	participant := flag.String("participant", uuid.NewString(), "participant id")
	topic := flag.String("topic", "test", "room to join")
	endpoint := flag.String("endpoint", "", "media server endpoint, empty to use STAGE_ENDPOINT")
	subscribeOnly := flag.Bool("subscribe-only", false, "deny publishing")
	expires := flag.Duration("expires", time.Hour, "token lifetime")
	flag.Parse()

	private, public, err := identity.RSA256SignKeyPair()
	if err != nil {
		log.Fatalf("Unable create sign key pair. Err: %s", err)
	}

	token, err := identity.NewTokenService(*expires).CreateParticipantToken(identity.ParticipantToken{
		ParticipantID:  *participant,
		Topic:          *topic,
		Endpoint:       *endpoint,
		AllowPublish:   !*subscribeOnly,
		AllowSubscribe: true,
	}, uuid.New(), string(private))
	if err != nil {
		log.Fatalf("Unable create participant token. Err: %s", err)
	}

	fmt.Printf("STAGE_TOKEN=%s\n", token)
	fmt.Printf("STAGE_TOKEN_JWK='%s'\n", public)
}
