package capture

import (
	"log/slog"
	"time"

	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/audiosession"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/binding"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

const (
	audioSampleRate = 48000
	// Full duplex routing keeps the capture latency low so that playback and
	// capture stay aligned.
	playAndRecordLatency = 10 * time.Millisecond
	defaultLatency       = 20 * time.Millisecond
)

func videoConstraints(urn string, config *binding.VideoConfiguration) mediadevices.MediaOption {
	return func(c *mediadevices.MediaTrackConstraints) {
		c.DeviceID = prop.String(urn)
		if config == nil {
			return
		}
		size := config.Size()
		c.Width = prop.Int(size.Width)
		c.Height = prop.Int(size.Height)
		c.FrameRate = prop.Float(float32(config.TargetFramerate()))
	}
}

func audioConstraints(urn string, strategy audiosession.Strategy, echoCancellation bool) mediadevices.MediaOption {
	return func(c *mediadevices.MediaTrackConstraints) {
		c.DeviceID = prop.String(urn)
		c.SampleRate = prop.Int(audioSampleRate)
		if echoCancellation {
			// Echo cancelled capture is mono.
			c.ChannelCount = prop.IntExact(1)
		}

		switch strategy {
		case audiosession.StrategyPlayAndRecord:
			c.Latency = prop.Duration(playAndRecordLatency)
		case audiosession.StrategyDefault:
			c.Latency = prop.Duration(defaultLatency)
		default:
			panic(protocol.Unhandled(strategy))
		}
	}
}

// StreamFactory opens one mediadevices track per bound device.
type StreamFactory struct {
	selector     *mediadevices.CodecSelector
	getUserMedia func(mediadevices.MediaStreamConstraints) (mediadevices.MediaStream, error)
	logger       *slog.Logger
}

var _ binding.StreamFactory = (*StreamFactory)(nil)

func (f *StreamFactory) NewLocalStream(device protocol.Device, config *binding.VideoConfiguration) (binding.Stream, error) {
	descriptor := device.Descriptor()
	constraints := mediadevices.MediaStreamConstraints{Codec: f.selector}

	var capability protocol.CodecCapability
	switch descriptor.Type {
	case protocol.DeviceTypeCamera:
		capability = VP8Capability
		constraints.Video = videoConstraints(descriptor.URN, config)
	case protocol.DeviceTypeMicrophone:
		capability = OpusCapability
		echoCancellation := false
		if canceller, ok := device.EchoCancellation(); ok {
			echoCancellation = canceller.EchoCancellationEnabled()
		}
		constraints.Audio = audioConstraints(descriptor.URN, audiosession.ApplicationStrategy(), echoCancellation)
	default:
		panic(protocol.Unhandled(descriptor.Type))
	}

	media, err := f.getUserMedia(constraints)
	if err != nil {
		return nil, err
	}

	var tracks []mediadevices.Track
	if descriptor.Type == protocol.DeviceTypeCamera {
		tracks = media.GetVideoTracks()
	} else {
		tracks = media.GetAudioTracks()
	}
	if len(tracks) == 0 {
		for _, track := range media.GetTracks() {
			_ = track.Close()
		}
		return nil, ErrNoTrack
	}

	stream := &localStream{
		id:      descriptor.URN,
		kind:    descriptor.Type,
		track:   tracks[0],
		codec:   capability,
		readers: make(map[*rtpReader]struct{}),
	}
	if config != nil {
		stream.bitrate = config.MaxBitrate()
	}

	f.logger.Info("local stream opened",
		slog.String("device", descriptor.URN),
		slog.String("kind", descriptor.Type.String()),
		slog.String("codec", capability.MimeType),
	)
	return stream, nil
}

type NewStreamFactory_Params struct {
	Selector *mediadevices.CodecSelector
	Logger   *slog.Logger
}

func NewStreamFactory(params NewStreamFactory_Params) *StreamFactory {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamFactory{
		selector:     params.Selector,
		getUserMedia: mediadevices.GetUserMedia,
		logger:       logger.With(slog.String("component", "capture")),
	}
}
