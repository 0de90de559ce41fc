package stage

import (
	"log/slog"

	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

const observerBufferSize = 32

type ConnectionStateUpdated struct {
	State protocol.ConnectionState
}

type PublishStateUpdated struct {
	State protocol.PublishState
}

type IntentsUpdated struct {
	Intents Intents
}

type RemoteStreamsUpdated struct {
	Streams []protocol.Stream
}

type LocalStreamsUpdated struct {
	CameraURN     string
	MicrophoneURN string
}

type StageEvent interface {
	ConnectionStateUpdated | PublishStateUpdated | IntentsUpdated | RemoteStreamsUpdated | LocalStreamsUpdated
}

type StageMessage[F any] struct {
	value F
}

func (m *StageMessage[F]) Unbox() F {
	return m.value
}

func NewStageMessage[F StageEvent](evt F) StageMessage[any] {
	return StageMessage[any]{
		value: evt,
	}
}

// Observer subscribes to every coordinator mutation. Messages are delivered
// in mutation order; a reader that falls behind the buffer loses messages.
func (c *Coordinator) Observer() <-chan StageMessage[any] {
	c.observersMu.Lock()
	defer c.observersMu.Unlock()

	ch := make(chan StageMessage[any], observerBufferSize)
	if c.observersClosed {
		close(ch)
		return ch
	}
	c.observers = append(c.observers, ch)
	return ch
}

func (c *Coordinator) ObserverUnref(obs <-chan StageMessage[any]) {
	c.observersMu.Lock()
	defer c.observersMu.Unlock()

	for i, observer := range c.observers {
		if obs == observer {
			close(observer)
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			return
		}
	}
}

func (c *Coordinator) dispatch(msg StageMessage[any]) {
	c.observersMu.Lock()
	defer c.observersMu.Unlock()

	for _, ch := range c.observers {
		select {
		case ch <- msg:
		default:
			c.logger.Debug("observer is lagging, drop message", slog.String("message", messageName(msg)))
		}
	}
}

func (c *Coordinator) closeObservers() {
	c.observersMu.Lock()
	defer c.observersMu.Unlock()

	for _, ch := range c.observers {
		close(ch)
	}
	c.observers = nil
	c.observersClosed = true
}

func messageName(msg StageMessage[any]) string {
	switch msg.Unbox().(type) {
	case ConnectionStateUpdated:
		return "connection-state"
	case PublishStateUpdated:
		return "publish-state"
	case IntentsUpdated:
		return "intents"
	case RemoteStreamsUpdated:
		return "remote-streams"
	case LocalStreamsUpdated:
		return "local-streams"
	default:
		return "unknown"
	}
}
