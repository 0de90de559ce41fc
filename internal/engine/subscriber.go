package engine

import (
	"log/slog"
	"time"

	webrtc "github.com/pion/webrtc/v4"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
	"golang.org/x/sync/errgroup"
)

const statsLogInterval = 10 * time.Second

func streamType(kind webrtc.RTPCodecType) (protocol.DeviceType, bool) {
	switch kind {
	case webrtc.RTPCodecTypeVideo:
		return protocol.DeviceTypeCamera, true
	case webrtc.RTPCodecTypeAudio:
		return protocol.DeviceTypeMicrophone, true
	default:
		return 0, false
	}
}

func subscribeAllows(scope protocol.SubscribeType, kind protocol.DeviceType) bool {
	switch scope {
	case protocol.SubscribeTypeNone:
		return false
	case protocol.SubscribeTypeAudioOnly:
		return kind == protocol.DeviceTypeMicrophone
	case protocol.SubscribeTypeAudioVideo:
		return true
	default:
		panic(protocol.Unhandled(scope))
	}
}

// subscriber announces remote tracks as streams of the participant whose
// media stream id they carry.
type subscriber struct {
	conn    *connection
	readers errgroup.Group
}

func (s *subscriber) handle(remote *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
	participant := protocol.ParticipantInfo{ID: remote.StreamID(), UserID: remote.StreamID()}
	logger := s.conn.logger.With(
		slog.String("remote", participant.ID),
		slog.String("track", remote.ID()),
		slog.String("codec", remote.Codec().MimeType),
	)

	kind, ok := streamType(remote.Kind())
	if !ok {
		logger.Warn("unknown remote track kind")
		s.readers.Go(func() error { return s.drain(remote) })
		return
	}

	scope := protocol.SubscribeTypeNone
	if s.conn.session.token.AllowSubscribe {
		if err := s.conn.session.query(s.conn.ctx, func() {
			scope = s.conn.session.strategy.ShouldSubscribeToParticipant(participant)
		}); err != nil {
			logger.Debug("unable query subscribe scope", slog.String("err", err.Error()))
		}
	}

	if !subscribeAllows(scope, kind) {
		logger.Debug("remote track not subscribed", slog.String("scope", scope.String()))
		s.readers.Go(func() error { return s.drain(remote) })
		return
	}

	stream := protocol.Stream{
		ID:            remote.ID(),
		ParticipantID: participant.ID,
		Type:          kind,
	}
	logger.Info("remote stream added")
	s.conn.session.emit(func(r protocol.Renderer) {
		r.StreamsAdded(participant, []protocol.Stream{stream})
	})

	s.readers.Go(func() error {
		defer func() {
			logger.Info("remote stream removed")
			s.conn.session.emit(func(r protocol.Renderer) {
				r.StreamsRemoved(participant, []protocol.Stream{stream})
			})
		}()
		return s.read(remote, logger)
	})
}

func (s *subscriber) read(remote *webrtc.TrackRemote, logger *slog.Logger) error {
	ssrc := uint32(remote.SSRC())
	last := time.Now()

	for {
		if _, _, err := remote.ReadRTP(); err != nil {
			return nil
		}

		if time.Since(last) < statsLogInterval {
			continue
		}
		last = time.Now()
		if inbound, ok := s.conn.stats.Inbound(ssrc); ok {
			logger.Debug("remote stream stats", slog.Any("inbound", inbound))
		}
	}
}

func (s *subscriber) drain(remote *webrtc.TrackRemote) error {
	for {
		if _, _, err := remote.ReadRTP(); err != nil {
			return nil
		}
	}
}

func (s *subscriber) wait() {
	_ = s.readers.Wait()
}

func newSubscriber(conn *connection) *subscriber {
	return &subscriber{conn: conn}
}
