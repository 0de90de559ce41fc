package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	webrtc "github.com/pion/webrtc/v4"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/rtpstats"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/wsutils"
)

// connection is one websocket plus peer connection pair of a joined session.
type connection struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	session *Session
	pc      *webrtc.PeerConnection
	signal  *Signal
	stats   *rtpstats.RtpStats
	logger  *slog.Logger

	publisher  *publisher
	subscriber *subscriber
}

func (c *connection) listen(ctx context.Context) error {
	for {
		message, err := c.signal.conn.ReadMessage()
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		default:
		}

		switch message.Event {
		case eventOffer:
			if err := c.signal.OnOffer([]byte(message.Data), c.publisher.apply); err != nil {
				return err
			}
			c.publisher.negotiated()

		case eventCandidate:
			if err := c.signal.OnCandidate([]byte(message.Data)); err != nil {
				return err
			}

		case eventError:
			c.logger.Warn("server error", slog.String("data", message.Data))
			return fmt.Errorf("%w: %s", ErrServerError, message.Data)

		case eventFilters:
			c.logger.Debug("server filters", slog.String("data", message.Data))

		default:
			c.logger.Debug("unhandled signal event", slog.String("event", message.Event))
		}
	}
}

func (c *connection) onConnectionStateChange(state webrtc.PeerConnectionState) {
	c.logger.Debug("peer connection state", slog.String("state", state.String()))

	switch state {
	case webrtc.PeerConnectionStateConnected:
		c.session.emit(func(r protocol.Renderer) {
			r.ConnectionStateChanged(protocol.ConnectionStateConnected, nil)
		})
		c.publisher.connected()

	case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed:
		c.cancel(errors.Join(ErrPeerConnectionClosed, fmt.Errorf("peer connection %s", state)))

	default:
	}
}

// close waits for every forwarding goroutine so that the last renderer
// events of the connection are posted before the disconnect.
func (c *connection) close() {
	if err := c.pc.Close(); err != nil {
		c.logger.Debug("unable close peer connection", slog.String("err", err.Error()))
	}
	c.publisher.close()
	c.subscriber.wait()
}

type newConnection_Params struct {
	Context        context.Context
	Cancel         context.CancelCauseFunc
	Session        *Session
	PeerConnection *webrtc.PeerConnection
	Writer         *wsutils.ThreadSafeWriter
	Stats          *rtpstats.RtpStats
	Desired        []protocol.LocalStream
}

func newConnection(params newConnection_Params) *connection {
	c := &connection{
		ctx:     params.Context,
		cancel:  params.Cancel,
		session: params.Session,
		pc:      params.PeerConnection,
		signal:  newSignal(params.Writer, params.PeerConnection),
		stats:   params.Stats,
		logger:  params.Session.logger,
	}
	c.publisher = newPublisher(c, params.Desired)
	c.subscriber = newSubscriber(c)

	c.pc.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate == nil {
			return
		}
		if err := c.signal.WriteCandidate(candidate.ToJSON()); err != nil {
			c.logger.Debug("unable send candidate", slog.String("err", err.Error()))
		}
	})
	c.pc.OnConnectionStateChange(c.onConnectionStateChange)
	c.pc.OnTrack(c.subscriber.handle)

	return c
}
