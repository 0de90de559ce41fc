package binding

import (
	"fmt"

	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

const (
	MinTargetFramerate = 10
	MaxTargetFramerate = 30

	MinMaxBitrate = 100_000
	MaxMaxBitrate = 8_500_000

	MinFrameSide = 160
	MaxFrameSide = 1920
)

type DegradationPreference int

const (
	DegradationPreferenceBalanced DegradationPreference = iota
	DegradationPreferenceMaintainFramerate
	DegradationPreferenceMaintainResolution
)

func (d DegradationPreference) String() string {
	switch d {
	case DegradationPreferenceBalanced:
		return "balanced"
	case DegradationPreferenceMaintainFramerate:
		return "maintainFramerate"
	case DegradationPreferenceMaintainResolution:
		return "maintainResolution"
	default:
		panic(protocol.Unhandled(d))
	}
}

type Size struct {
	Width  int
	Height int
}

// VideoConfiguration is shared by every camera binding of a coordinator.
// Setters validate and keep the previous value on error.
type VideoConfiguration struct {
	targetFramerate       int
	size                  Size
	maxBitrate            int
	DegradationPreference DegradationPreference
	SimulcastEnabled      bool
}

func (c *VideoConfiguration) TargetFramerate() int { return c.targetFramerate }
func (c *VideoConfiguration) Size() Size           { return c.size }
func (c *VideoConfiguration) MaxBitrate() int      { return c.maxBitrate }

func (c *VideoConfiguration) SetTargetFramerate(fps int) error {
	if fps < MinTargetFramerate || fps > MaxTargetFramerate {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrFramerateOutOfRange, fps, MinTargetFramerate, MaxTargetFramerate)
	}
	c.targetFramerate = fps
	return nil
}

func (c *VideoConfiguration) SetSize(size Size) error {
	for _, side := range []int{size.Width, size.Height} {
		if side < MinFrameSide || side > MaxFrameSide {
			return fmt.Errorf("%w: %dx%d", ErrSizeOutOfRange, size.Width, size.Height)
		}
	}
	c.size = size
	return nil
}

func (c *VideoConfiguration) SetMaxBitrate(bps int) error {
	if bps < MinMaxBitrate || bps > MaxMaxBitrate {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrBitrateOutOfRange, bps, MinMaxBitrate, MaxMaxBitrate)
	}
	c.maxBitrate = bps
	return nil
}

// DefaultVideoConfiguration is the portrait 720p profile used for publishing.
func DefaultVideoConfiguration() *VideoConfiguration {
	return &VideoConfiguration{
		targetFramerate:       30,
		size:                  Size{Width: 720, Height: 1280},
		maxBitrate:            2_500_000,
		DegradationPreference: DegradationPreferenceMaintainResolution,
		SimulcastEnabled:      false,
	}
}
