package protocol

import (
	echo "github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// Controllers are collected by service.HttpModule from this group.
const httpControllerTag = `group:"http.controller"`

type HttpRouter = *echo.Echo

// HttpResolvable registers the routes of a controller once the router exists.
type HttpResolvable interface {
	Resolve(HttpRouter) error
}

// AsHttpController annotates a controller constructor for the http.controller group.
func AsHttpController(constructor any) any {
	return fx.Annotate(
		constructor,
		fx.As(new(HttpResolvable)),
		fx.ResultTags(httpControllerTag),
	)
}
