// Package capture binds local cameras and microphones through
// pion/mediadevices. Drivers register themselves on import, see cmd.
package capture

import (
	"context"
	"log/slog"

	"github.com/pion/mediadevices/pkg/driver"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/devices"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

type driverEntry struct {
	id       string
	label    string
	kind     protocol.DeviceType
	priority driver.Priority
}

func queryDrivers() []driverEntry {
	var entries []driverEntry

	manager := driver.GetManager()
	for _, d := range manager.Query(driver.FilterVideoRecorder()) {
		info := d.Info()
		entries = append(entries, driverEntry{id: d.ID(), label: info.Label, kind: protocol.DeviceTypeCamera, priority: info.Priority})
	}
	for _, d := range manager.Query(driver.FilterAudioRecorder()) {
		info := d.Info()
		entries = append(entries, driverEntry{id: d.ID(), label: info.Label, kind: protocol.DeviceTypeMicrophone, priority: info.Priority})
	}
	return entries
}

// describe turns drivers into devices. The driver with the highest priority
// of each type is the default one, the first wins on ties.
func describe(entries []driverEntry) []*device {
	defaults := make(map[protocol.DeviceType]int)
	for i, entry := range entries {
		current, exist := defaults[entry.kind]
		if !exist || entry.priority > entries[current].priority {
			defaults[entry.kind] = i
		}
	}

	result := make([]*device, 0, len(entries))
	for i, entry := range entries {
		descriptor := protocol.DeviceDescriptor{
			Type:         entry.kind,
			IsDefault:    defaults[entry.kind] == i,
			URN:          entry.id,
			FriendlyName: entry.label,
		}
		if descriptor.FriendlyName == "" {
			descriptor.FriendlyName = entry.id
		}

		switch entry.kind {
		case protocol.DeviceTypeCamera:
			result = append(result, &device{descriptor: descriptor, variant: protocol.DeviceVariantCamera})
		case protocol.DeviceTypeMicrophone:
			result = append(result, &device{descriptor: descriptor, variant: protocol.DeviceVariantMicrophone, echo: &echoCanceller{}})
		default:
			panic(protocol.Unhandled(entry.kind))
		}
	}
	return result
}

// Discovery lists the drivers known to the mediadevices manager. Devices
// keep their echo cancellation flag across enumerations.
type Discovery struct {
	query  func() []driverEntry
	logger *slog.Logger

	known map[string]*device
}

var _ devices.Discovery = (*Discovery)(nil)

func (d *Discovery) ListLocalDevices(ctx context.Context) ([]protocol.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	described := describe(d.query())
	listed := make([]protocol.Device, 0, len(described))
	for _, current := range described {
		if known, exist := d.known[current.descriptor.URN]; exist {
			known.descriptor = current.descriptor
			listed = append(listed, known)
			continue
		}
		d.known[current.descriptor.URN] = current
		listed = append(listed, current)
	}

	d.logger.Debug("drivers queried", slog.Int("count", len(listed)))
	return listed, nil
}

func NewDiscovery(logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{
		query:  queryDrivers,
		logger: logger.With(slog.String("component", "capture")),
		known:  make(map[string]*device),
	}
}
