// Package devices enumerates the local capture devices.
package devices

import (
	"context"
	"log/slog"
	"sort"

	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
)

// Discovery is the capture backend enumeration.
type Discovery interface {
	ListLocalDevices(ctx context.Context) ([]protocol.Device, error)
}

type Registry struct {
	discovery Discovery
	logger    *slog.Logger
}

// ListDevices returns a snapshot where default devices come before the
// non-default ones, keeping the discovery order otherwise. Enumeration
// failures are logged and yield an empty snapshot.
func (r *Registry) ListDevices(ctx context.Context) []protocol.Device {
	devices, err := r.discovery.ListLocalDevices(ctx)
	if err != nil {
		r.logger.Warn("unable enumerate local devices", slog.String("err", err.Error()))
		return []protocol.Device{}
	}

	result := make([]protocol.Device, 0, len(devices))
	for _, device := range devices {
		if device == nil {
			continue
		}
		result = append(result, device)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Descriptor().IsDefault && !result[j].Descriptor().IsDefault
	})

	r.logger.Debug("local devices listed", slog.Int("count", len(result)))
	return result
}

// FirstOfType picks the first device of the given type in registry order.
func FirstOfType(devices []protocol.Device, deviceType protocol.DeviceType) (protocol.Device, bool) {
	for _, device := range devices {
		if device.Descriptor().Type == deviceType {
			return device, true
		}
	}
	return nil, false
}

type NewRegistry_Params struct {
	Discovery Discovery
	Logger    *slog.Logger
}

func NewRegistry(params NewRegistry_Params) *Registry {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		discovery: params.Discovery,
		logger:    logger.With(slog.String("component", "devices")),
	}
}
