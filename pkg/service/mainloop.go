package service

import (
	"context"

	"github.com/romashorodok/conferencing-platform/stage-client/pkg/mainloop"
	"go.uber.org/fx"
)

type mainLoop_Params struct {
	fx.In

	Lifecycle fx.Lifecycle
}

func mainLoop(params mainLoop_Params) *mainloop.Loop {
	loop := mainloop.New()

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go loop.Run(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			loop.Stop()
			select {
			case <-loop.Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
	return loop
}

var MainLoopModule = fx.Module("mainloop", fx.Provide(
	mainLoop,
))
