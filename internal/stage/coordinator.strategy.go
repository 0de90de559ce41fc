package stage

import "github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"

var _ protocol.Strategy = (*Coordinator)(nil)

func (c *Coordinator) ShouldPublishParticipant(protocol.ParticipantInfo) bool {
	return c.intents.Broadcast
}

// StreamsToPublishForParticipant returns the camera stream then the
// microphone stream, each only while its intent is on and it is bound.
func (c *Coordinator) StreamsToPublishForParticipant(protocol.ParticipantInfo) []protocol.LocalStream {
	streams := make([]protocol.LocalStream, 0, 2)

	if c.intents.Camera {
		if b := c.bindings.Binding(protocol.DeviceTypeCamera); b != nil {
			streams = append(streams, b.Stream())
		}
	}
	if c.intents.Microphone {
		if b := c.bindings.Binding(protocol.DeviceTypeMicrophone); b != nil {
			streams = append(streams, b.Stream())
		}
	}

	return streams
}

func (c *Coordinator) ShouldSubscribeToParticipant(protocol.ParticipantInfo) protocol.SubscribeType {
	return protocol.SubscribeTypeAudioVideo
}
