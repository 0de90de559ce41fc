package stage

import (
	"context"
	"errors"
	"testing"

	"github.com/romashorodok/conferencing-platform/stage-client/internal/binding"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/devices"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/workaround"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

type fakeSession struct {
	renderers []protocol.Renderer
	joins     int
	leaves    int
	refreshes int
	joinErr   error
	leaveErr  error
	onJoin    func()
}

func (s *fakeSession) Join() error {
	s.joins++
	if s.joinErr != nil {
		return s.joinErr
	}
	if s.onJoin != nil {
		s.onJoin()
	}
	return nil
}

func (s *fakeSession) Leave() error {
	s.leaves++
	return s.leaveErr
}

func (s *fakeSession) AddRenderer(r protocol.Renderer) {
	s.renderers = append(s.renderers, r)
}

func (s *fakeSession) RefreshStrategy() {
	s.refreshes++
}

type fakeEngine struct {
	session  *fakeSession
	token    string
	strategy protocol.Strategy
	err      error
}

func (e *fakeEngine) CreateSession(token string, strategy protocol.Strategy) (protocol.Session, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.token = token
	e.strategy = strategy
	return e.session, nil
}

type fakeDevice struct {
	descriptor protocol.DeviceDescriptor
}

func (d *fakeDevice) Descriptor() protocol.DeviceDescriptor { return d.descriptor }

func (d *fakeDevice) Variant() protocol.DeviceVariant {
	if d.descriptor.Type == protocol.DeviceTypeCamera {
		return protocol.DeviceVariantCamera
	}
	return protocol.DeviceVariantMicrophone
}

func (d *fakeDevice) EchoCancellation() (protocol.EchoCanceller, bool) { return nil, false }

func (d *fakeDevice) InputSources() (protocol.InputSourceSelector, bool) { return nil, false }

type fakeDiscovery struct {
	devices []protocol.Device
	calls   int
}

func (d *fakeDiscovery) ListLocalDevices(context.Context) ([]protocol.Device, error) {
	d.calls++
	return d.devices, nil
}

type fakeStream struct {
	id       string
	kind     protocol.DeviceType
	applied  int
	released bool
}

func (s *fakeStream) ID() string                { return s.id }
func (s *fakeStream) Type() protocol.DeviceType { return s.kind }
func (s *fakeStream) Codec() protocol.CodecCapability {
	return protocol.CodecCapability{}
}

func (s *fakeStream) NewRTPReader(uint32, int) (protocol.RTPReader, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeStream) Close() error {
	s.released = true
	return nil
}

func (s *fakeStream) SetConfiguration(*binding.VideoConfiguration) error {
	s.applied++
	return nil
}

type fakeFactory struct {
	streams map[string]*fakeStream
}

func (f *fakeFactory) NewLocalStream(device protocol.Device, _ *binding.VideoConfiguration) (binding.Stream, error) {
	descriptor := device.Descriptor()
	stream := &fakeStream{id: descriptor.URN, kind: descriptor.Type}
	f.streams[descriptor.URN] = stream
	return stream, nil
}

type fixture struct {
	coordinator *Coordinator
	session     *fakeSession
	engine      *fakeEngine
	discovery   *fakeDiscovery
	factory     *fakeFactory
}

func newFixture(t *testing.T, set workaround.Set, available ...protocol.Device) *fixture {
	t.Helper()

	f := &fixture{
		session:   &fakeSession{},
		discovery: &fakeDiscovery{devices: available},
		factory:   &fakeFactory{streams: make(map[string]*fakeStream)},
	}
	f.engine = &fakeEngine{session: f.session}

	coordinator, err := NewCoordinator(NewCoordinator_Params{
		Engine:      f.engine,
		Token:       "token",
		Registry:    devices.NewRegistry(devices.NewRegistry_Params{Discovery: f.discovery}),
		Bindings:    binding.NewManager(binding.NewManager_Params{Factory: f.factory, Workarounds: set}),
		Workarounds: set,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(coordinator.Close)

	f.coordinator = coordinator
	return f
}

func cameraDevice(urn string, isDefault bool) protocol.Device {
	return &fakeDevice{descriptor: protocol.DeviceDescriptor{Type: protocol.DeviceTypeCamera, URN: urn, IsDefault: isDefault}}
}

func microphoneDevice(urn string, isDefault bool) protocol.Device {
	return &fakeDevice{descriptor: protocol.DeviceDescriptor{Type: protocol.DeviceTypeMicrophone, URN: urn, IsDefault: isDefault}}
}

var (
	localParticipant  = protocol.ParticipantInfo{ID: "local", IsLocal: true}
	remoteParticipant = protocol.ParticipantInfo{ID: "remote"}
)
