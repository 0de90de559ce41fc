package stage

import (
	"log/slog"

	"github.com/romashorodok/conferencing-platform/stage-client/internal/workaround"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

var _ protocol.Renderer = (*Coordinator)(nil)

// ConnectionStateChanged overwrites the connection state. An error coming
// with Disconnected is treated as a clean disconnect.
func (c *Coordinator) ConnectionStateChanged(state protocol.ConnectionState, err error) {
	logger := c.logger.With(slog.String("state", state.String()))
	if err != nil {
		logger = logger.With(slog.String("err", err.Error()))
	}
	logger.Info("connection state changed")

	c.connectionState = state
	c.dispatch(NewStageMessage(ConnectionStateUpdated{State: state}))
}

func (c *Coordinator) PublishStateChanged(participant protocol.ParticipantInfo, state protocol.PublishState) {
	if !participant.IsLocal {
		return
	}

	c.logger.Info("publish state changed", slog.String("state", state.String()))
	c.publishState = state
	c.dispatch(NewStageMessage(PublishStateUpdated{State: state}))

	switch state {
	case protocol.PublishStatePublished:
		if c.workarounds.Contains(workaround.FixPublisherVideoQuality) {
			c.logger.Debug("re-apply devices after publish")
			c.updateDevices()
		}
	case protocol.PublishStateAttemptingPublish, protocol.PublishStateNotPublished:
	default:
		panic(protocol.Unhandled(state))
	}
}

func (c *Coordinator) StreamsAdded(participant protocol.ParticipantInfo, streams []protocol.Stream) {
	if participant.IsLocal {
		return
	}

	c.remoteStreams.Add(streams...)
	c.logger.Debug("remote streams added", slog.String("participant", participant.ID), slog.Int("count", len(streams)))
	c.dispatch(NewStageMessage(RemoteStreamsUpdated{Streams: c.remoteStreams.List()}))
}

func (c *Coordinator) StreamsRemoved(participant protocol.ParticipantInfo, streams []protocol.Stream) {
	if participant.IsLocal {
		return
	}

	removed := c.remoteStreams.Remove(streams...)
	c.logger.Debug("remote streams removed", slog.String("participant", participant.ID), slog.Int("count", removed))
	c.dispatch(NewStageMessage(RemoteStreamsUpdated{Streams: c.remoteStreams.List()}))
}

func (c *Coordinator) ParticipantJoined(protocol.ParticipantInfo) {}

func (c *Coordinator) ParticipantLeft(protocol.ParticipantInfo) {}

func (c *Coordinator) StreamsMutedChanged(protocol.ParticipantInfo, []protocol.Stream) {}

func (c *Coordinator) SubscribeStateChanged(protocol.ParticipantInfo, protocol.SubscribeState) {}
