// Package binding creates, refreshes and releases the local streams bound to
// capture devices.
package binding

import (
	"log/slog"

	"github.com/romashorodok/conferencing-platform/stage-client/internal/devices"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/workaround"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

// Stream is a local stream the manager can reconfigure.
type Stream interface {
	protocol.LocalStream
	SetConfiguration(config *VideoConfiguration) error
}

type StreamFactory interface {
	// NewLocalStream binds device to a new stream. config is nil for microphones.
	NewLocalStream(device protocol.Device, config *VideoConfiguration) (Stream, error)
}

type LocalStreamBinding struct {
	device protocol.Device
	stream Stream
	config *VideoConfiguration
}

func (b *LocalStreamBinding) DeviceURN() string           { return b.device.Descriptor().URN }
func (b *LocalStreamBinding) Kind() protocol.DeviceType   { return b.device.Descriptor().Type }
func (b *LocalStreamBinding) Device() protocol.Device     { return b.device }
func (b *LocalStreamBinding) Stream() Stream              { return b.stream }
func (b *LocalStreamBinding) Config() *VideoConfiguration { return b.config }

// Manager holds at most one binding per device type. It is not safe for
// concurrent use; the stage coordinator owns it.
type Manager struct {
	factory     StreamFactory
	config      *VideoConfiguration
	workarounds workaround.Set
	logger      *slog.Logger

	bindings map[protocol.DeviceType]*LocalStreamBinding
}

func (m *Manager) Binding(kind protocol.DeviceType) *LocalStreamBinding {
	return m.bindings[kind]
}

func (m *Manager) VideoConfiguration() *VideoConfiguration {
	return m.config
}

// Reconcile brings the binding of kind in line with the enabled intent and
// returns it, nil meaning unbound. Missing devices and configuration errors
// are not failures: the kind simply stays unbound or keeps its old settings.
func (m *Manager) Reconcile(kind protocol.DeviceType, enabled bool, available []protocol.Device) *LocalStreamBinding {
	logger := m.logger.With(slog.String("kind", kind.String()))

	if !enabled {
		m.release(kind)
		return nil
	}

	current := m.bindings[kind]
	if current == nil {
		current = m.bind(kind, available, logger)
		if current == nil {
			return nil
		}
		m.bindings[kind] = current
	} else if err := current.stream.SetConfiguration(current.config); err != nil {
		logger.Warn("unable re-apply stream configuration", slog.String("err", err.Error()))
	}

	m.selectInputSource(current, logger)
	return current
}

func (m *Manager) bind(kind protocol.DeviceType, available []protocol.Device, logger *slog.Logger) *LocalStreamBinding {
	device, ok := devices.FirstOfType(available, kind)
	if !ok {
		logger.Debug("no device available, staying unbound")
		return nil
	}

	if m.factory == nil {
		logger.Warn("unable bind device", slog.String("err", ErrNoStreamFactory.Error()))
		return nil
	}

	var config *VideoConfiguration
	if kind == protocol.DeviceTypeCamera {
		config = m.config
	}

	if kind == protocol.DeviceTypeMicrophone && m.workarounds.Contains(workaround.FixPublisherNoMicrophoneSound) {
		if canceller, ok := device.EchoCancellation(); ok {
			if err := canceller.SetEchoCancellationEnabled(true); err != nil {
				logger.Warn("unable enable echo cancellation", slog.String("err", err.Error()))
			}
		}
	}

	stream, err := m.factory.NewLocalStream(device, config)
	if err != nil {
		logger.Warn("unable create local stream", slog.String("device", device.Descriptor().URN), slog.String("err", err.Error()))
		return nil
	}

	logger.Info("device bound", slog.String("device", device.Descriptor().URN))
	return &LocalStreamBinding{
		device: device,
		stream: stream,
		config: config,
	}
}

// Input sources of a multi-source device may change while it stays bound, so
// the preferred source is picked again on every pass.
func (m *Manager) selectInputSource(b *LocalStreamBinding, logger *slog.Logger) {
	selector, ok := b.device.InputSources()
	if !ok {
		return
	}

	sources := selector.ListAvailableInputSources()
	if len(sources) == 0 {
		return
	}

	preferred := sources[0]
	for _, source := range sources {
		if source.IsDefault {
			preferred = source
			break
		}
	}

	if err := selector.SetPreferredInputSource(preferred); err != nil {
		logger.Warn("unable select input source", slog.String("source", preferred.URN), slog.String("err", err.Error()))
	}
}

func (m *Manager) release(kind protocol.DeviceType) {
	current, exist := m.bindings[kind]
	if !exist {
		return
	}
	delete(m.bindings, kind)

	if err := current.stream.Close(); err != nil {
		m.logger.Warn("unable close local stream", slog.String("kind", kind.String()), slog.String("err", err.Error()))
	}
	m.logger.Info("device released", slog.String("kind", kind.String()), slog.String("device", current.DeviceURN()))
}

// Close releases every binding.
func (m *Manager) Close() {
	for kind := range m.bindings {
		m.release(kind)
	}
}

type NewManager_Params struct {
	Factory     StreamFactory
	Config      *VideoConfiguration
	Workarounds workaround.Set
	Logger      *slog.Logger
}

func NewManager(params NewManager_Params) *Manager {
	config := params.Config
	if config == nil {
		config = DefaultVideoConfiguration()
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		factory:     params.Factory,
		config:      config,
		workarounds: params.Workarounds,
		logger:      logger.With(slog.String("component", "binding")),
		bindings:    make(map[protocol.DeviceType]*LocalStreamBinding),
	}
}
