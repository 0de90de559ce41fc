package presenter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	echo "github.com/labstack/echo/v4"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/stage"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/workaround"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/mainloop"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/protocol"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/wsutils"
	"go.uber.org/fx"
)

const eventViewModel = "view-model"

type workaroundView struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type stageController struct {
	loop        *mainloop.Loop
	coordinator *stage.Coordinator
	shutdowner  fx.Shutdowner
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// viewModel snapshots the coordinator on the main loop.
func (ctrl *stageController) viewModel(ctx context.Context) (ViewModel, error) {
	var snapshot stage.Snapshot
	if err := ctrl.loop.Call(ctx, func() {
		snapshot = ctrl.coordinator.Snapshot()
	}); err != nil {
		return ViewModel{}, err
	}
	return NewViewModel(snapshot), nil
}

// intent runs fn on the main loop and answers with the resulting view model.
func (ctrl *stageController) intent(ctx echo.Context, fn func()) error {
	if err := ctrl.loop.Call(ctx.Request().Context(), fn); err != nil {
		return err
	}
	vm, err := ctrl.viewModel(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, vm)
}

func (ctrl *stageController) StageControllerGet(ctx echo.Context) error {
	vm, err := ctrl.viewModel(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, vm)
}

// StageControllerConnect stops the application when the join request itself
// fails. There is no way to recover a session that cannot join.
func (ctrl *stageController) StageControllerConnect(ctx echo.Context) error {
	var toggleErr error
	if err := ctrl.intent(ctx, func() {
		toggleErr = ctrl.coordinator.ToggleConnect()
	}); err != nil {
		return err
	}

	if errors.Is(toggleErr, stage.ErrJoinFailed) {
		ctrl.logger.Error("unable toggle stage connection", slog.String("err", toggleErr.Error()))
		_ = ctrl.shutdowner.Shutdown(fx.ExitCode(1))
	}
	return nil
}

func (ctrl *stageController) StageControllerCamera(ctx echo.Context) error {
	return ctrl.intent(ctx, ctrl.coordinator.ToggleCamera)
}

func (ctrl *stageController) StageControllerMicrophone(ctx echo.Context) error {
	return ctrl.intent(ctx, ctrl.coordinator.ToggleMicrophone)
}

func (ctrl *stageController) StageControllerBroadcast(ctx echo.Context) error {
	return ctrl.intent(ctx, ctrl.coordinator.ToggleBroadcast)
}

func (ctrl *stageController) StageControllerWorkarounds(ctx echo.Context) error {
	var set workaround.Set
	if err := ctrl.loop.Call(ctx.Request().Context(), func() {
		set = ctrl.coordinator.Workarounds()
	}); err != nil {
		return err
	}

	result := make([]workaroundView, 0, set.Len())
	for _, w := range set.List() {
		result = append(result, workaroundView{Key: w.String(), Name: w.Name()})
	}
	return ctx.JSON(http.StatusOK, result)
}

// StageControllerEvents pushes a view model on connect and after every
// coordinator mutation.
func (ctrl *stageController) StageControllerEvents(ctx echo.Context) error {
	conn, err := ctrl.upgrader.Upgrade(ctx.Response().Writer, ctx.Request(), nil)
	if err != nil {
		ctrl.logger.Error("unable upgrade request", slog.String("err", err.Error()))
		return err
	}

	w := wsutils.NewThreadSafeWriter(conn)
	defer w.Close()

	logger := ctrl.logger.With(slog.String("observer", uuid.NewString()))
	logger.Info("observer connected", slog.String("addr", w.RemoteAddr().String()))

	obs := ctrl.coordinator.Observer()
	defer ctrl.coordinator.ObserverUnref(obs)

	eventsCtx, cancel := context.WithCancelCause(ctx.Request().Context())
	defer cancel(nil)

	go func() {
		for {
			if _, err := w.ReadMessage(); err != nil {
				cancel(ErrEventsClosed)
				return
			}
		}
	}()

	if err := ctrl.push(eventsCtx, w); err != nil {
		logger.Debug("unable push view model", slog.String("err", err.Error()))
		return nil
	}

	for {
		select {
		case <-eventsCtx.Done():
			logger.Info("observer disconnected", slog.String("cause", context.Cause(eventsCtx).Error()))
			return nil
		case _, ok := <-obs:
			if !ok {
				_ = w.CloseGracefully(ErrStageClosed.Error())
				return nil
			}
			if err := ctrl.push(eventsCtx, w); err != nil {
				logger.Debug("unable push view model", slog.String("err", err.Error()))
				return nil
			}
		}
	}
}

func (ctrl *stageController) push(ctx context.Context, w *wsutils.ThreadSafeWriter) error {
	vm, err := ctrl.viewModel(ctx)
	if err != nil {
		return err
	}
	return w.WriteEvent(eventViewModel, vm)
}

func (ctrl *stageController) Resolve(c *echo.Echo) error {
	g := c.Group("/stage")
	g.GET("", ctrl.StageControllerGet)
	g.POST("/connect", ctrl.StageControllerConnect)
	g.POST("/camera", ctrl.StageControllerCamera)
	g.POST("/microphone", ctrl.StageControllerMicrophone)
	g.POST("/broadcast", ctrl.StageControllerBroadcast)
	g.GET("/workarounds", ctrl.StageControllerWorkarounds)
	g.GET("/events", ctrl.StageControllerEvents)
	return nil
}

var _ protocol.HttpResolvable = (*stageController)(nil)

type newStageController_Params struct {
	fx.In

	Loop        *mainloop.Loop
	Coordinator *stage.Coordinator
	Shutdowner  fx.Shutdowner
	Logger      *slog.Logger
}

func NewStageController(params newStageController_Params) *stageController {
	return &stageController{
		loop:        params.Loop,
		coordinator: params.Coordinator,
		shutdowner:  params.Shutdowner,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: params.Logger.With(slog.String("component", "presenter")),
	}
}

var Module = fx.Module("presenter",
	fx.Provide(protocol.AsHttpController(NewStageController)),
)
