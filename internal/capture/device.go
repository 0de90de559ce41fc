package capture

import (
	"sync"

	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

type echoCanceller struct {
	mu      sync.Mutex
	enabled bool
}

func (e *echoCanceller) EchoCancellationEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

func (e *echoCanceller) SetEchoCancellationEnabled(enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
	return nil
}

type device struct {
	descriptor protocol.DeviceDescriptor
	variant    protocol.DeviceVariant
	echo       *echoCanceller
}

func (d *device) Descriptor() protocol.DeviceDescriptor {
	return d.descriptor
}

func (d *device) Variant() protocol.DeviceVariant {
	return d.variant
}

func (d *device) EchoCancellation() (protocol.EchoCanceller, bool) {
	if d.echo == nil {
		return nil, false
	}
	return d.echo, true
}

// mediadevices drivers expose a single input each.
func (d *device) InputSources() (protocol.InputSourceSelector, bool) {
	return nil, false
}
