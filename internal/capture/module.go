package capture

import (
	"log/slog"

	"github.com/pion/mediadevices"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/binding"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/capture/codecs"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/devices"
	"go.uber.org/fx"
)

type codecSelector_Params struct {
	fx.In

	Config *binding.VideoConfiguration `optional:"true"`
}

func codecSelector(params codecSelector_Params) (*mediadevices.CodecSelector, error) {
	return codecs.NewSelector(params.Config)
}

type streamFactory_Params struct {
	fx.In

	Selector *mediadevices.CodecSelector
	Logger   *slog.Logger
}

func streamFactory(params streamFactory_Params) binding.StreamFactory {
	return NewStreamFactory(NewStreamFactory_Params{
		Selector: params.Selector,
		Logger:   params.Logger,
	})
}

func discovery(logger *slog.Logger) devices.Discovery {
	return NewDiscovery(logger)
}

var Module = fx.Module("capture",
	fx.Provide(
		codecSelector,
		streamFactory,
		discovery,
	),
)
