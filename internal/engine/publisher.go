package engine

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/pion/rtcp"
	webrtc "github.com/pion/webrtc/v4"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
	"golang.org/x/sync/errgroup"
)

const publishMTU = 1200

type publishedTrack struct {
	stream protocol.LocalStream
	track  *webrtc.TrackLocalStaticRTP
	sender *webrtc.RTPSender
	reader protocol.RTPReader
}

// publisher keeps the local tracks of the peer connection in line with the
// streams the strategy asked for. Track changes are only applied while
// answering a server offer.
type publisher struct {
	conn *connection

	mu          sync.Mutex
	desired     []protocol.LocalStream
	published   map[string]*publishedTrack
	state       protocol.PublishState
	isConnected bool
	closed      bool

	forwarders errgroup.Group
}

// sameStreams compares stream objects, not ids. A device bound again gets a
// new stream under the same id and the old one is already closed.
func sameStreams(a, b []protocol.LocalStream) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// update records the streams to publish and asks the server for an offer
// when they changed.
func (p *publisher) update(desired []protocol.LocalStream) {
	p.mu.Lock()
	if p.closed || sameStreams(p.desired, desired) {
		p.mu.Unlock()
		return
	}
	p.desired = desired
	if len(desired) > 0 {
		p.setState(protocol.PublishStateAttemptingPublish)
	}
	p.mu.Unlock()

	if err := p.conn.signal.RequestOffer(); err != nil {
		p.conn.logger.Warn("unable request renegotiation", slog.String("err", err.Error()))
	}
}

// apply runs between the remote offer and the local answer.
func (p *publisher) apply() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	keep := make(map[string]protocol.LocalStream, len(p.desired))
	for _, stream := range p.desired {
		keep[stream.ID()] = stream
	}

	for id, published := range p.published {
		if stream, exist := keep[id]; exist && stream == published.stream {
			continue
		}
		p.unpublish(published)
		delete(p.published, id)
	}

	var err error
	for _, stream := range p.desired {
		if _, exist := p.published[stream.ID()]; exist {
			continue
		}
		published, pErr := p.publish(stream)
		if pErr != nil {
			err = errors.Join(err, pErr)
			continue
		}
		p.published[stream.ID()] = published
	}
	if err != nil {
		p.conn.logger.Warn("unable publish every stream", slog.String("err", err.Error()))
	}
	return nil
}

func (p *publisher) publish(stream protocol.LocalStream) (*publishedTrack, error) {
	capability := stream.Codec()
	track, err := webrtc.NewTrackLocalStaticRTP(webrtc.RTPCodecCapability{
		MimeType:    capability.MimeType,
		ClockRate:   capability.ClockRate,
		Channels:    capability.Channels,
		SDPFmtpLine: capability.SDPFmtpLine,
	}, stream.ID(), p.conn.session.local.ID)
	if err != nil {
		return nil, err
	}

	sender, err := p.conn.pc.AddTrack(track)
	if err != nil {
		return nil, err
	}

	var ssrc uint32
	if encodings := sender.GetParameters().Encodings; len(encodings) > 0 {
		ssrc = uint32(encodings[0].SSRC)
	}

	reader, err := stream.NewRTPReader(ssrc, publishMTU)
	if err != nil {
		_ = p.conn.pc.RemoveTrack(sender)
		return nil, err
	}

	published := &publishedTrack{
		stream: stream,
		track:  track,
		sender: sender,
		reader: reader,
	}
	p.forwarders.Go(func() error { return p.forwardRTP(published) })
	p.forwarders.Go(func() error { return p.readRTCP(published) })

	p.conn.logger.Info("stream published", slog.String("stream", stream.ID()), slog.String("codec", capability.MimeType))
	return published, nil
}

func (p *publisher) unpublish(published *publishedTrack) {
	if err := published.reader.Close(); err != nil {
		p.conn.logger.Debug("unable close rtp reader", slog.String("err", err.Error()))
	}
	if err := p.conn.pc.RemoveTrack(published.sender); err != nil {
		p.conn.logger.Debug("unable remove track", slog.String("err", err.Error()))
	}
	p.conn.logger.Info("stream unpublished", slog.String("stream", published.stream.ID()))
}

func (p *publisher) forwardRTP(published *publishedTrack) error {
	for {
		pkts, release, err := published.reader.Read()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.conn.logger.Debug("rtp read stopped", slog.String("stream", published.stream.ID()), slog.String("err", err.Error()))
			}
			return nil
		}

		for _, pkt := range pkts {
			if pkt == nil {
				continue
			}
			if err := published.track.WriteRTP(pkt); err != nil && !errors.Is(err, io.ErrClosedPipe) {
				p.conn.logger.Debug("rtp write failed", slog.String("stream", published.stream.ID()), slog.String("err", err.Error()))
			}
		}
		if release != nil {
			release()
		}
	}
}

// readRTCP turns key frame requests of the remote side into encoder
// key frames.
func (p *publisher) readRTCP(published *publishedTrack) error {
	for {
		pkts, _, err := published.sender.ReadRTCP()
		if err != nil {
			return nil
		}

		for _, pkt := range pkts {
			switch pkt.(type) {
			case *rtcp.PictureLossIndication, *rtcp.FullIntraRequest:
				if err := published.reader.ForceKeyFrame(); err != nil {
					p.conn.logger.Debug("unable force key frame", slog.String("stream", published.stream.ID()), slog.String("err", err.Error()))
				}
			default:
			}
		}
	}
}

// negotiated runs once the answer was sent.
func (p *publisher) negotiated() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settle()
}

func (p *publisher) connected() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isConnected = true
	p.settle()
}

func (p *publisher) settle() {
	switch {
	case p.closed:
	case len(p.published) == 0:
		p.setState(protocol.PublishStateNotPublished)
	case p.isConnected && len(p.published) == len(p.desired):
		p.setState(protocol.PublishStatePublished)
	default:
		p.setState(protocol.PublishStateAttemptingPublish)
	}
}

func (p *publisher) setState(state protocol.PublishState) {
	if p.state == state {
		return
	}
	p.state = state

	local := p.conn.session.local
	p.conn.session.emit(func(r protocol.Renderer) {
		r.PublishStateChanged(local, state)
	})
}

func (p *publisher) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	for id, published := range p.published {
		if err := published.reader.Close(); err != nil {
			p.conn.logger.Debug("unable close rtp reader", slog.String("err", err.Error()))
		}
		delete(p.published, id)
	}
	p.setState(protocol.PublishStateNotPublished)
	p.closed = true
	p.mu.Unlock()

	_ = p.forwarders.Wait()
}

func newPublisher(conn *connection, desired []protocol.LocalStream) *publisher {
	return &publisher{
		conn:      conn,
		desired:   desired,
		published: make(map[string]*publishedTrack),
		state:     protocol.PublishStateNotPublished,
	}
}

