package capture

import (
	"errors"
	"sync"

	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/codec"
	"github.com/pion/rtp"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/binding"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

var (
	ErrNoTrack           = errors.New("media stream has no track of the requested kind")
	ErrStreamClosed      = errors.New("local stream closed")
	ErrUnsupportedCodec  = errors.New("codec mime type is not supported")
	ErrKeyFrameRejected  = errors.New("encoder can't force a key frame")
	ErrBitrateNotApplied = errors.New("encoder can't change bitrate")
)

var (
	VP8Capability = protocol.CodecCapability{
		MimeType:  "video/VP8",
		ClockRate: 90000,
	}
	OpusCapability = protocol.CodecCapability{
		MimeType:    "audio/opus",
		ClockRate:   48000,
		Channels:    2,
		SDPFmtpLine: "minptime=10;useinbandfec=1",
	}
)

func codecName(capability protocol.CodecCapability) (string, error) {
	switch capability.MimeType {
	case VP8Capability.MimeType:
		return "VP8", nil
	case OpusCapability.MimeType:
		return "opus", nil
	default:
		return "", ErrUnsupportedCodec
	}
}

type rtpReader struct {
	reader mediadevices.RTPReadCloser
	kind   protocol.DeviceType
	onDone func(*rtpReader)
	once   sync.Once
}

func (r *rtpReader) Read() ([]*rtp.Packet, func(), error) {
	return r.reader.Read()
}

func (r *rtpReader) ForceKeyFrame() error {
	if r.kind != protocol.DeviceTypeCamera {
		return nil
	}
	controller, ok := r.reader.Controller().(codec.KeyFrameController)
	if !ok {
		return ErrKeyFrameRejected
	}
	return controller.ForceKeyFrame()
}

func (r *rtpReader) setBitRate(bitrate int) error {
	controller, ok := r.reader.Controller().(codec.BitRateController)
	if !ok {
		return ErrBitrateNotApplied
	}
	return controller.SetBitRate(bitrate)
}

func (r *rtpReader) Close() error {
	var err error
	r.once.Do(func() {
		err = r.reader.Close()
		r.onDone(r)
	})
	return err
}

// localStream is one captured track. Frame size and rate are fixed when
// the track is opened; the bitrate follows the configuration live.
type localStream struct {
	id    string
	kind  protocol.DeviceType
	track mediadevices.Track
	codec protocol.CodecCapability

	mu      sync.Mutex
	readers map[*rtpReader]struct{}
	bitrate int
	closed  bool
}

var _ binding.Stream = (*localStream)(nil)

func (s *localStream) ID() string {
	return s.id
}

func (s *localStream) Type() protocol.DeviceType {
	return s.kind
}

func (s *localStream) Codec() protocol.CodecCapability {
	return s.codec
}

func (s *localStream) NewRTPReader(ssrc uint32, mtu int) (protocol.RTPReader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStreamClosed
	}

	name, err := codecName(s.codec)
	if err != nil {
		return nil, err
	}

	reader, err := s.track.NewRTPReader(name, ssrc, mtu)
	if err != nil {
		return nil, err
	}

	result := &rtpReader{reader: reader, kind: s.kind, onDone: s.forget}
	if s.bitrate > 0 {
		_ = result.setBitRate(s.bitrate)
	}
	s.readers[result] = struct{}{}
	return result, nil
}

func (s *localStream) forget(r *rtpReader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.readers, r)
}

func (s *localStream) SetConfiguration(config *binding.VideoConfiguration) error {
	if config == nil || s.kind != protocol.DeviceTypeCamera {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bitrate = config.MaxBitrate()

	var err error
	for reader := range s.readers {
		err = errors.Join(err, reader.setBitRate(s.bitrate))
	}
	return err
}

func (s *localStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	readers := make([]*rtpReader, 0, len(s.readers))
	for reader := range s.readers {
		readers = append(readers, reader)
	}
	s.mu.Unlock()

	var err error
	for _, reader := range readers {
		err = errors.Join(err, reader.Close())
	}
	return errors.Join(err, s.track.Close())
}
