// Package engine joins stages of the conferencing media server with
// pion/webrtc. Renderer callbacks and strategy queries always run on the
// main loop; everything else runs on the engine goroutines.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	webrtc "github.com/pion/webrtc/v4"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/identity"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/mainloop"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/rtpstats"
	"go.uber.org/fx"
)

const dialTimeout = 10 * time.Second

type Engine struct {
	api        *webrtc.API
	stats      <-chan *rtpstats.RtpStats
	parser     *identity.TokenParser
	loop       *mainloop.Loop
	dialer     *websocket.Dialer
	endpoint   string
	iceServers []webrtc.ICEServer
	logger     *slog.Logger
	now        func() time.Time

	peerConnectionMu sync.Mutex
}

var _ protocol.Engine = (*Engine)(nil)

func (e *Engine) CreateSession(token string, strategy protocol.Strategy) (protocol.Session, error) {
	if strategy == nil {
		return nil, ErrNoStrategy
	}

	participant, err := e.parser.Parse(token)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	endpoint := participant.Endpoint
	if endpoint == "" {
		endpoint = e.endpoint
	}
	target, err := joinURL(endpoint, participant.Topic)
	if err != nil {
		return nil, err
	}

	return newSession(e, participant, target, strategy), nil
}

// newPeerConnection pairs the connection with the stats getter its
// interceptor produced. Creation is serialized for that pairing.
func (e *Engine) newPeerConnection() (*webrtc.PeerConnection, *rtpstats.RtpStats, error) {
	e.peerConnectionMu.Lock()
	defer e.peerConnectionMu.Unlock()

	pc, err := e.api.NewPeerConnection(webrtc.Configuration{
		ICEServers: e.iceServers,
	})
	if err != nil {
		return nil, nil, err
	}

	var stats *rtpstats.RtpStats
	select {
	case stats = <-e.stats:
	default:
	}
	return pc, stats, nil
}

// joinURL maps the endpoint onto the websocket join route of a room.
func joinURL(endpoint, topic string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Join(ErrInvalidEndpoint, err)
	}

	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidEndpoint, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidEndpoint)
	}

	return u.JoinPath("rooms", topic, "join").String(), nil
}

func iceServers(urls []string) []webrtc.ICEServer {
	result := make([]webrtc.ICEServer, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		result = append(result, webrtc.ICEServer{URLs: []string{u}})
	}
	return result
}

type NewEngine_Params struct {
	fx.In

	API        *webrtc.API
	Stats      chan *rtpstats.RtpStats
	Parser     *identity.TokenParser
	Loop       *mainloop.Loop
	Endpoint   string   `name:"stage.endpoint"`
	ICEServers []string `name:"stage.ice_servers"`
	Logger     *slog.Logger
}

func NewEngine(params NewEngine_Params) *Engine {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		api:        params.API,
		stats:      params.Stats,
		parser:     params.Parser,
		loop:       params.Loop,
		dialer:     &websocket.Dialer{HandshakeTimeout: dialTimeout},
		endpoint:   params.Endpoint,
		iceServers: iceServers(params.ICEServers),
		logger:     logger.With(slog.String("component", "engine")),
		now:        time.Now,
	}
}

func engine(params NewEngine_Params) protocol.Engine {
	return NewEngine(params)
}

var Module = fx.Module("engine", fx.Provide(engine))
