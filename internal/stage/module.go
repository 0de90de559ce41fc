package stage

import (
	"context"
	"log/slog"

	"github.com/romashorodok/conferencing-platform/stage-client/internal/binding"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/devices"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/workaround"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/mainloop"
	"go.uber.org/fx"
)

type registry_Params struct {
	fx.In

	Discovery devices.Discovery
	Logger    *slog.Logger
}

func registry(params registry_Params) *devices.Registry {
	return devices.NewRegistry(devices.NewRegistry_Params{
		Discovery: params.Discovery,
		Logger:    params.Logger,
	})
}

type bindings_Params struct {
	fx.In

	Factory     binding.StreamFactory
	Config      *binding.VideoConfiguration `optional:"true"`
	Workarounds workaround.Set
	Logger      *slog.Logger
}

func bindings(params bindings_Params) *binding.Manager {
	return binding.NewManager(binding.NewManager_Params{
		Factory:     params.Factory,
		Config:      params.Config,
		Workarounds: params.Workarounds,
		Logger:      params.Logger,
	})
}

type applyProcessWorkarounds_Params struct {
	fx.In

	Workarounds workaround.Set
	Logger      *slog.Logger
}

func applyProcessWorkarounds(params applyProcessWorkarounds_Params) {
	if ApplyProcessWorkarounds(params.Workarounds) {
		params.Logger.Warn("process audio routing switched to play and record for every session")
	}
}

type closeOnStop_Params struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Loop        *mainloop.Loop
	Coordinator *Coordinator
}

func closeOnStop(params closeOnStop_Params) {
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return params.Loop.Call(ctx, params.Coordinator.Close)
		},
	})
}

// Module must be placed before any invoke that needs the coordinator so that
// process workarounds are applied first.
var Module = fx.Module("stage",
	fx.Provide(
		registry,
		bindings,
		NewCoordinator,
	),
	fx.Invoke(applyProcessWorkarounds),
	fx.Invoke(closeOnStop),
)
