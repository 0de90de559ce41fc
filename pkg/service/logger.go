package service

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/romashorodok/conferencing-platform/stage-client/pkg/variables"
	"go.uber.org/fx"
)

var (
	LOG_LEVEL  = variables.Env(variables.LOG_LEVEL_NAME, variables.LOG_LEVEL_DEFAULT)
	LOG_SOURCE = variables.Env(variables.LOG_SOURCE_NAME, variables.LOG_SOURCE_DEFAULT)
)

// loggerOptions parses the level ("debug", "info", "warn", "error", also
// "info+2") and whether records carry their source position.
func loggerOptions(level, source string) (*slog.HandlerOptions, error) {
	var parsedLevel slog.Level
	if err := parsedLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%s: %w", variables.LOG_LEVEL_NAME, err)
	}

	addSource, err := strconv.ParseBool(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", variables.LOG_SOURCE_NAME, err)
	}

	return &slog.HandlerOptions{
		AddSource: addSource,
		Level:     parsedLevel,
	}, nil
}

func newLogger(w io.Writer, options *slog.HandlerOptions) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, options))
}

type logger_Params struct {
	fx.In
}

func logger(logger_Params) (*slog.Logger, error) {
	options, err := loggerOptions(LOG_LEVEL, LOG_SOURCE)
	if err != nil {
		return nil, err
	}
	return newLogger(os.Stdout, options), nil
}

var LoggerModule = fx.Module("logger", fx.Provide(
	logger,
))
