package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v4"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
	"go.uber.org/fx"
)

type httpServer_Params struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Shutdowner  fx.Shutdowner
	Controllers []protocol.HttpResolvable `group:"http.controller"`
	Port        string                    `name:"http.port"`
	Logger      *slog.Logger
}

func httpErrorHandler(e *echo.Echo, logger *slog.Logger) func(err error, c echo.Context) {
	return func(err error, c echo.Context) {
		logger.Error(err.Error(), slog.String("method", c.Request().Method), slog.String("path", c.Request().URL.Path))
		e.DefaultHTTPErrorHandler(err, c)
	}
}

func httpServer(params httpServer_Params) error {
	router := echo.New()
	router.HideBanner = true
	router.HTTPErrorHandler = httpErrorHandler(router, params.Logger)

	for _, controller := range params.Controllers {
		if err := controller.Resolve(router); err != nil {
			return err
		}
	}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				err := router.Start(fmt.Sprintf(":%s", params.Port))
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					params.Logger.Error("http server stopped", slog.String("err", err.Error()))
					_ = params.Shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return router.Shutdown(ctx)
		},
	})
	return nil
}

var HttpModule = fx.Module("http", fx.Invoke(httpServer))
