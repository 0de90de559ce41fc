// Package stage coordinates the local participant of a stage: user intents,
// the devices bound to them, and the state reported back by the engine.
//
// A Coordinator has no locks. Every method except Observer and ObserverUnref
// must be called from the single owning context, usually a mainloop.Loop.
package stage

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/romashorodok/conferencing-platform/stage-client/internal/binding"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/devices"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/workaround"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
	"go.uber.org/fx"
)

type Intents struct {
	Camera     bool `json:"camera"`
	Microphone bool `json:"microphone"`
	Broadcast  bool `json:"broadcast"`
}

type Coordinator struct {
	session     protocol.Session
	registry    *devices.Registry
	bindings    *binding.Manager
	workarounds workaround.Set
	logger      *slog.Logger

	connectionState protocol.ConnectionState
	publishState    protocol.PublishState
	intents         Intents
	remoteStreams   RemoteStreamSet

	observers       []chan StageMessage[any]
	observersMu     sync.Mutex
	observersClosed bool

	ctx    context.Context
	cancel context.CancelCauseFunc
}

// ToggleConnect requests a leave while connected or connecting and a join
// while disconnected. The resulting state arrives through
// ConnectionStateChanged.
func (c *Coordinator) ToggleConnect() error {
	var err error

	switch c.connectionState {
	case protocol.ConnectionStateConnected, protocol.ConnectionStateConnecting:
		c.logger.Info("leave stage", slog.String("state", c.connectionState.String()))
		err = c.session.Leave()
	case protocol.ConnectionStateDisconnected:
		c.logger.Info("join stage")
		err = c.session.Join()
	default:
		panic(protocol.Unhandled(c.connectionState))
	}

	if err != nil {
		return errors.Join(ErrJoinFailed, err)
	}
	return nil
}

func (c *Coordinator) ToggleCamera() {
	c.intents.Camera = !c.intents.Camera
	c.dispatch(NewStageMessage(IntentsUpdated{Intents: c.intents}))
	c.updateDevices()
}

func (c *Coordinator) ToggleMicrophone() {
	c.intents.Microphone = !c.intents.Microphone
	c.dispatch(NewStageMessage(IntentsUpdated{Intents: c.intents}))
	c.updateDevices()
}

func (c *Coordinator) ToggleBroadcast() {
	c.intents.Broadcast = !c.intents.Broadcast
	c.dispatch(NewStageMessage(IntentsUpdated{Intents: c.intents}))
	c.session.RefreshStrategy()
}

// updateDevices runs a full reconciliation pass: enumerate, reconcile camera
// then microphone, and push a strategy refresh to the engine.
func (c *Coordinator) updateDevices() {
	var available []protocol.Device
	if c.intents.Camera || c.intents.Microphone {
		available = c.registry.ListDevices(c.ctx)
	}

	camera := c.bindings.Reconcile(protocol.DeviceTypeCamera, c.intents.Camera, available)
	microphone := c.bindings.Reconcile(protocol.DeviceTypeMicrophone, c.intents.Microphone, available)

	var msg LocalStreamsUpdated
	if camera != nil {
		msg.CameraURN = camera.DeviceURN()
	}
	if microphone != nil {
		msg.MicrophoneURN = microphone.DeviceURN()
	}
	c.dispatch(NewStageMessage(msg))

	c.session.RefreshStrategy()
}

func (c *Coordinator) ConnectionState() protocol.ConnectionState {
	return c.connectionState
}

func (c *Coordinator) PublishState() protocol.PublishState {
	return c.publishState
}

func (c *Coordinator) Intents() Intents {
	return c.intents
}

func (c *Coordinator) RemoteStreams() []protocol.Stream {
	return c.remoteStreams.List()
}

func (c *Coordinator) Workarounds() workaround.Set {
	return c.workarounds
}

// PreviewCamera is the bound camera stream used for the local preview.
func (c *Coordinator) PreviewCamera() (protocol.LocalStream, bool) {
	if !c.intents.Camera {
		return nil, false
	}
	b := c.bindings.Binding(protocol.DeviceTypeCamera)
	if b == nil {
		return nil, false
	}
	return b.Stream(), true
}

type Snapshot struct {
	ConnectionState protocol.ConnectionState
	PublishState    protocol.PublishState
	Intents         Intents
	RemoteStreams   []protocol.Stream
	PreviewCamera   string
	Microphone      string
}

func (c *Coordinator) Snapshot() Snapshot {
	snapshot := Snapshot{
		ConnectionState: c.connectionState,
		PublishState:    c.publishState,
		Intents:         c.intents,
		RemoteStreams:   c.remoteStreams.List(),
	}
	if stream, ok := c.PreviewCamera(); ok {
		snapshot.PreviewCamera = stream.ID()
	}
	if c.intents.Microphone {
		if b := c.bindings.Binding(protocol.DeviceTypeMicrophone); b != nil {
			snapshot.Microphone = b.DeviceURN()
		}
	}
	return snapshot
}

// Close leaves a connected or connecting session, releases the bound devices
// and closes every observer.
func (c *Coordinator) Close() {
	switch c.connectionState {
	case protocol.ConnectionStateConnected, protocol.ConnectionStateConnecting:
		if err := c.session.Leave(); err != nil {
			c.logger.Warn("unable leave stage on close", slog.String("err", err.Error()))
		}
	case protocol.ConnectionStateDisconnected:
	default:
		panic(protocol.Unhandled(c.connectionState))
	}

	c.cancel(ErrCoordinatorClosed)
	c.bindings.Close()
	c.closeObservers()
}

type NewCoordinator_Params struct {
	fx.In

	Engine      protocol.Engine
	Token       string `name:"stage.token"`
	Registry    *devices.Registry
	Bindings    *binding.Manager
	Workarounds workaround.Set
	Logger      *slog.Logger
}

// NewCoordinator creates the engine session with the coordinator as its
// strategy and registers the coordinator as a renderer.
func NewCoordinator(params NewCoordinator_Params) (*Coordinator, error) {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	c := &Coordinator{
		registry:    params.Registry,
		bindings:    params.Bindings,
		workarounds: params.Workarounds,
		logger:      logger.With(slog.String("component", "stage")),
		ctx:         ctx,
		cancel:      cancel,
	}

	session, err := params.Engine.CreateSession(params.Token, c)
	if err != nil {
		cancel(err)
		return nil, errors.Join(ErrSessionCreate, err)
	}
	c.session = session
	session.AddRenderer(c)

	c.logger.Info("stage session created", slog.Any("workarounds", params.Workarounds.Strings()))
	return c, nil
}
