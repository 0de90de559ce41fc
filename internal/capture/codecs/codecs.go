// Package codecs builds the mediadevices encoders used for publishing. It
// links libvpx and libopus.
package codecs

import (
	"time"

	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/codec/opus"
	"github.com/pion/mediadevices/pkg/codec/vpx"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/binding"
)

const (
	keyFrameInterval = 60
	opusBitrate      = 32_000
)

func NewSelector(config *binding.VideoConfiguration) (*mediadevices.CodecSelector, error) {
	vpxParams, err := vpx.NewVP8Params()
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = binding.DefaultVideoConfiguration()
	}
	vpxParams.BitRate = config.MaxBitrate()
	vpxParams.KeyFrameInterval = keyFrameInterval
	vpxParams.RateControlEndUsage = vpx.RateControlCBR
	vpxParams.Deadline = time.Second / time.Duration(config.TargetFramerate())

	opusParams, err := opus.NewParams()
	if err != nil {
		return nil, err
	}
	opusParams.BitRate = opusBitrate
	opusParams.Latency = opus.Latency20ms

	return mediadevices.NewCodecSelector(
		mediadevices.WithVideoEncoders(&vpxParams),
		mediadevices.WithAudioEncoders(&opusParams),
	), nil
}
