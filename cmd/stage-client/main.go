package main

import (
	"github.com/romashorodok/conferencing-platform/stage-client/internal/capture"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/config"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/engine"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/presenter"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/stage"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/service"
	"go.uber.org/fx"

	_ "github.com/pion/mediadevices/pkg/driver/camera"
	_ "github.com/pion/mediadevices/pkg/driver/microphone"
)

func main() {
	fx.New(
		service.LoggerModule,
		service.MainLoopModule,
		service.WebrtcModule,

		config.Module,
		capture.Module,
		engine.Module,
		stage.Module,
		presenter.Module,

		service.HttpModule,
	).Run()
}
