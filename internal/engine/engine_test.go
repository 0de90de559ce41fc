package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	webrtc "github.com/pion/webrtc/v4"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/identity"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/mainloop"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/wsutils"
)

const eventTimeout = 5 * time.Second

type recordingRenderer struct {
	events chan string
	errs   chan error
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{
		events: make(chan string, 64),
		errs:   make(chan error, 64),
	}
}

func (r *recordingRenderer) ConnectionStateChanged(state protocol.ConnectionState, err error) {
	r.events <- "connection:" + state.String()
	r.errs <- err
}

func (r *recordingRenderer) PublishStateChanged(participant protocol.ParticipantInfo, state protocol.PublishState) {
	r.events <- "publish:" + state.String()
}

func (r *recordingRenderer) StreamsAdded(participant protocol.ParticipantInfo, streams []protocol.Stream) {
	r.events <- fmt.Sprintf("added:%d", len(streams))
}

func (r *recordingRenderer) StreamsRemoved(participant protocol.ParticipantInfo, streams []protocol.Stream) {
	r.events <- fmt.Sprintf("removed:%d", len(streams))
}

func (r *recordingRenderer) ParticipantJoined(protocol.ParticipantInfo) {}

func (r *recordingRenderer) ParticipantLeft(protocol.ParticipantInfo) {}

func (r *recordingRenderer) StreamsMutedChanged(protocol.ParticipantInfo, []protocol.Stream) {}

func (r *recordingRenderer) SubscribeStateChanged(protocol.ParticipantInfo, protocol.SubscribeState) {}

// waitConnection skips publish and stream events.
func (r *recordingRenderer) waitConnection(t *testing.T, expected protocol.ConnectionState) error {
	t.Helper()
	timeout := time.After(eventTimeout)
	for {
		select {
		case event := <-r.events:
			if !strings.HasPrefix(event, "connection:") {
				continue
			}
			err := <-r.errs
			if event != "connection:"+expected.String() {
				t.Fatalf("expected %s, got %s", expected, event)
			}
			return err
		case <-timeout:
			t.Fatalf("timeout waiting for %s", expected)
			return nil
		}
	}
}

type staticStrategy struct{}

func (staticStrategy) ShouldPublishParticipant(protocol.ParticipantInfo) bool { return false }

func (staticStrategy) StreamsToPublishForParticipant(protocol.ParticipantInfo) []protocol.LocalStream {
	return nil
}

func (staticStrategy) ShouldSubscribeToParticipant(protocol.ParticipantInfo) protocol.SubscribeType {
	return protocol.SubscribeTypeAudioVideo
}

func newTestAPI(t *testing.T) *webrtc.API {
	t.Helper()
	mediaEngine := &webrtc.MediaEngine{}
	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		t.Fatal(err)
	}
	return webrtc.NewAPI(webrtc.WithMediaEngine(mediaEngine))
}

func newTestEngine(t *testing.T, endpoint string) *Engine {
	t.Helper()

	loop := mainloop.New()
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(cancel)

	parser, err := identity.NewTokenParser("")
	if err != nil {
		t.Fatal(err)
	}

	return NewEngine(NewEngine_Params{
		API:      newTestAPI(t),
		Parser:   parser,
		Loop:     loop,
		Endpoint: endpoint,
	})
}

func mintToken(t *testing.T) string {
	t.Helper()
	private, _, err := identity.RSA256SignKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	token, err := identity.NewTokenService(time.Hour).CreateParticipantToken(identity.ParticipantToken{
		ParticipantID:  "participant-1",
		Topic:          "test",
		AllowPublish:   true,
		AllowSubscribe: true,
	}, uuid.New(), string(private))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestJoinURL(t *testing.T) {
	for name, testCase := range map[string]struct {
		endpoint string
		expected string
		err      error
	}{
		"Websocket": {endpoint: "ws://localhost:8080", expected: "ws://localhost:8080/rooms/test/join"},
		"Http":      {endpoint: "http://localhost:8080/api", expected: "ws://localhost:8080/api/rooms/test/join"},
		"Https":     {endpoint: "https://stage.local", expected: "wss://stage.local/rooms/test/join"},
		"Scheme":    {endpoint: "ftp://stage.local", err: ErrInvalidEndpoint},
		"Host":      {endpoint: "ws://", err: ErrInvalidEndpoint},
	} {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			target, err := joinURL(testCase.endpoint, "test")
			if testCase.err != nil {
				if !errors.Is(err, testCase.err) {
					t.Fatalf("expected %v, got %v", testCase.err, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if target != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, target)
			}
		})
	}
}

func TestSubscribeAllows(t *testing.T) {
	for name, testCase := range map[string]struct {
		scope      protocol.SubscribeType
		camera     bool
		microphone bool
	}{
		"None":       {scope: protocol.SubscribeTypeNone},
		"AudioOnly":  {scope: protocol.SubscribeTypeAudioOnly, microphone: true},
		"AudioVideo": {scope: protocol.SubscribeTypeAudioVideo, camera: true, microphone: true},
	} {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			if subscribeAllows(testCase.scope, protocol.DeviceTypeCamera) != testCase.camera {
				t.Fatal("unexpected camera scope")
			}
			if subscribeAllows(testCase.scope, protocol.DeviceTypeMicrophone) != testCase.microphone {
				t.Fatal("unexpected microphone scope")
			}
		})
	}
}

func TestCreateSessionErrors(t *testing.T) {
	e := newTestEngine(t, "ws://localhost:8080")

	if _, err := e.CreateSession("garbage", staticStrategy{}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := e.CreateSession(mintToken(t), nil); !errors.Is(err, ErrNoStrategy) {
		t.Fatalf("expected ErrNoStrategy, got %v", err)
	}

	e.endpoint = "ftp://localhost"
	if _, err := e.CreateSession(mintToken(t), staticStrategy{}); !errors.Is(err, ErrInvalidEndpoint) {
		t.Fatalf("expected ErrInvalidEndpoint, got %v", err)
	}
}

func TestJoinExpiredToken(t *testing.T) {
	e := newTestEngine(t, "ws://localhost:8080")
	session, err := e.CreateSession(mintToken(t), staticStrategy{})
	if err != nil {
		t.Fatal(err)
	}

	e.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if err := session.Join(); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestLeaveBeforeJoin(t *testing.T) {
	e := newTestEngine(t, "ws://localhost:8080")
	session, err := e.CreateSession(mintToken(t), staticStrategy{})
	if err != nil {
		t.Fatal(err)
	}

	if err := session.Leave(); err != nil {
		t.Fatalf("expected leave without join to be a no-op, got %v", err)
	}
}

func TestJoinDialFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	e := newTestEngine(t, endpoint)
	session, err := e.CreateSession(mintToken(t), staticStrategy{})
	if err != nil {
		t.Fatal(err)
	}
	renderer := newRecordingRenderer()
	session.AddRenderer(renderer)

	if err := session.Join(); err != nil {
		t.Fatal(err)
	}

	renderer.waitConnection(t, protocol.ConnectionStateConnecting)
	if err := renderer.waitConnection(t, protocol.ConnectionStateDisconnected); !errors.Is(err, ErrDial) {
		t.Fatalf("expected ErrDial, got %v", err)
	}

	if err := session.Leave(); err != nil {
		t.Fatalf("expected leave after disconnect to be a no-op, got %v", err)
	}

	// A failed join can be retried.
	if err := session.Join(); err != nil {
		t.Fatalf("expected join retry, got %v", err)
	}
	renderer.waitConnection(t, protocol.ConnectionStateConnecting)
	renderer.waitConnection(t, protocol.ConnectionStateDisconnected)
}

// stageServer offers recvonly transceivers the way the media server does and
// records what the client sends back.
func stageServer(t *testing.T, received chan<- wsutils.Message, authorization chan<- string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rooms/test/join" {
			http.NotFound(w, r)
			return
		}
		authorization <- r.Header.Get("Authorization")

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := wsutils.NewThreadSafeWriter(ws)
		defer conn.Close()

		pc, err := newTestAPI(t).NewPeerConnection(webrtc.Configuration{})
		if err != nil {
			t.Error(err)
			return
		}
		defer pc.Close()

		for _, kind := range []webrtc.RTPCodecType{webrtc.RTPCodecTypeVideo, webrtc.RTPCodecTypeAudio} {
			if _, err := pc.AddTransceiverFromKind(kind, webrtc.RTPTransceiverInit{Direction: webrtc.RTPTransceiverDirectionRecvonly}); err != nil {
				t.Error(err)
				return
			}
		}

		offer, err := pc.CreateOffer(nil)
		if err != nil {
			t.Error(err)
			return
		}
		if err := pc.SetLocalDescription(offer); err != nil {
			t.Error(err)
			return
		}
		if err := conn.WriteEvent(eventOffer, &offerMessage{SessionDescription: offer, HashState: "hash-1"}); err != nil {
			t.Error(err)
			return
		}

		for {
			message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if message.Event == eventAnswer {
				var answer webrtc.SessionDescription
				if err := json.Unmarshal([]byte(message.Data), &answer); err != nil {
					t.Error(err)
					return
				}
				if err := pc.SetRemoteDescription(answer); err != nil {
					t.Error(err)
					return
				}
			}
			received <- *message
		}
	}))
}

func TestJoinAnswersOfferAndLeaves(t *testing.T) {
	received := make(chan wsutils.Message, 64)
	authorization := make(chan string, 1)
	server := stageServer(t, received, authorization)
	defer server.Close()

	token := mintToken(t)
	e := newTestEngine(t, server.URL)
	session, err := e.CreateSession(token, staticStrategy{})
	if err != nil {
		t.Fatal(err)
	}
	renderer := newRecordingRenderer()
	session.AddRenderer(renderer)

	if err := session.Join(); err != nil {
		t.Fatal(err)
	}
	if err := session.Join(); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}
	renderer.waitConnection(t, protocol.ConnectionStateConnecting)

	select {
	case header := <-authorization:
		if header != "Bearer "+token {
			t.Fatalf("unexpected authorization %q", header)
		}
	case <-time.After(eventTimeout):
		t.Fatal("timeout waiting for join request")
	}

	expected := map[string]bool{eventAnswer: false, eventCommitOfferState: false}
	timeout := time.After(eventTimeout)
	for !expected[eventAnswer] || !expected[eventCommitOfferState] {
		select {
		case message := <-received:
			if message.Event == eventCommitOfferState {
				var commit commitOfferStateMessage
				if err := json.Unmarshal([]byte(message.Data), &commit); err != nil {
					t.Fatal(err)
				}
				if commit.StateHash != "hash-1" {
					t.Fatalf("unexpected state hash %q", commit.StateHash)
				}
				if !expected[eventAnswer] {
					t.Fatal("state committed before answer")
				}
			}
			expected[message.Event] = true
		case <-timeout:
			t.Fatalf("timeout waiting for answer, got %v", expected)
		}
	}

	if err := session.Leave(); err != nil {
		t.Fatal(err)
	}
	if err := renderer.waitConnection(t, protocol.ConnectionStateDisconnected); err != nil {
		t.Fatalf("leave must disconnect cleanly, got %v", err)
	}

	// A repeated disconnect issued before the first one was reported.
	if err := session.Leave(); err != nil {
		t.Fatalf("expected repeated leave to be a no-op, got %v", err)
	}
}
