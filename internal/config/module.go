package config

import (
	"log/slog"

	"github.com/romashorodok/conferencing-platform/stage-client/internal/binding"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/identity"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/workaround"
	"go.uber.org/fx"
)

type config_Params struct {
	fx.In

	Logger *slog.Logger
}

func config(params config_Params) (*Config, error) {
	return Load(params.Logger.With(slog.String("component", "config")))
}

func workarounds(cfg *Config) (workaround.Set, error) {
	return cfg.Workarounds()
}

func videoConfiguration(cfg *Config) (*binding.VideoConfiguration, error) {
	return cfg.VideoConfiguration()
}

func stageToken(cfg *Config) string {
	return cfg.Stage.Token
}

func httpPort(cfg *Config) string {
	return cfg.HttpPort
}

func stageEndpoint(cfg *Config) string {
	return cfg.Stage.Endpoint
}

func stageICEServers(cfg *Config) []string {
	return cfg.Stage.ICEServers
}

func tokenParser(cfg *Config) (*identity.TokenParser, error) {
	return identity.NewTokenParser(cfg.Stage.TokenJWK)
}

var Module = fx.Module("config",
	fx.Provide(
		config,
		workarounds,
		videoConfiguration,
		tokenParser,
		fx.Annotate(stageToken, fx.ResultTags(`name:"stage.token"`)),
		fx.Annotate(stageEndpoint, fx.ResultTags(`name:"stage.endpoint"`)),
		fx.Annotate(stageICEServers, fx.ResultTags(`name:"stage.ice_servers"`)),
		fx.Annotate(httpPort, fx.ResultTags(`name:"http.port"`)),
	),
)
