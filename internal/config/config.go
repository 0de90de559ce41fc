// Package config loads the stage client configuration with viper: built-in
// defaults, then config/stage.<CONFIG_ENV>.yaml, then the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/romashorodok/conferencing-platform/stage-client/internal/binding"
	"github.com/romashorodok/conferencing-platform/stage-client/internal/workaround"
	"github.com/romashorodok/conferencing-platform/stage-client/pkg/variables"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type VideoConfig struct {
	Framerate  int `mapstructure:"framerate"`
	Width      int `mapstructure:"width"`
	Height     int `mapstructure:"height"`
	MaxBitrate int `mapstructure:"max_bitrate"`
}

type StageConfig struct {
	Token       string      `mapstructure:"token"`
	Endpoint    string      `mapstructure:"endpoint"`
	TokenJWK    string      `mapstructure:"token_jwk"`
	Workarounds []string    `mapstructure:"workarounds"`
	ICEServers  []string    `mapstructure:"ice_servers"`
	Video       VideoConfig `mapstructure:"video"`
}

type Config struct {
	Env      string      `mapstructure:"env"`
	HttpPort string      `mapstructure:"http_port"`
	Stage    StageConfig `mapstructure:"stage"`
}

// Workarounds parses the configured workaround keys.
func (c *Config) Workarounds() (workaround.Set, error) {
	set, err := workaround.Parse(c.Stage.Workarounds)
	if err != nil {
		return workaround.Set{}, errors.Join(ErrInvalidConfig, err)
	}
	return set, nil
}

// VideoConfiguration starts from the default configuration and applies the
// configured non-zero values.
func (c *Config) VideoConfiguration() (*binding.VideoConfiguration, error) {
	config := binding.DefaultVideoConfiguration()
	video := c.Stage.Video

	if video.Framerate != 0 {
		if err := config.SetTargetFramerate(video.Framerate); err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
	}
	if video.MaxBitrate != 0 {
		if err := config.SetMaxBitrate(video.MaxBitrate); err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
	}
	if video.Width != 0 || video.Height != 0 {
		size := config.Size()
		if video.Width != 0 {
			size.Width = video.Width
		}
		if video.Height != 0 {
			size.Height = video.Height
		}
		if err := config.SetSize(size); err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", variables.CONFIG_ENV_DEFAULT)
	v.SetDefault("http_port", variables.HTTP_PORT_DEFAULT)
	v.SetDefault("stage.token", variables.STAGE_TOKEN_DEFAULT)
	v.SetDefault("stage.endpoint", variables.STAGE_ENDPOINT_DEFAULT)
	v.SetDefault("stage.token_jwk", variables.STAGE_TOKEN_JWK_DEFAULT)
	v.SetDefault("stage.workarounds", variables.STAGE_WORKAROUNDS_DEFAULT)
	v.SetDefault("stage.ice_servers", variables.STAGE_ICE_SERVERS_DEFAULT)
}

func bindEnv(v *viper.Viper) error {
	return errors.Join(
		v.BindEnv("env", variables.CONFIG_ENV_NAME),
		v.BindEnv("http_port", variables.HTTP_PORT_NAME),
		v.BindEnv("stage.token", variables.STAGE_TOKEN_NAME),
		v.BindEnv("stage.endpoint", variables.STAGE_ENDPOINT_NAME),
		v.BindEnv("stage.token_jwk", variables.STAGE_TOKEN_JWK_NAME),
		v.BindEnv("stage.workarounds", variables.STAGE_WORKAROUNDS_NAME),
		v.BindEnv("stage.ice_servers", variables.STAGE_ICE_SERVERS_NAME),
	)
}

// Load reads config/stage.<CONFIG_ENV>.yaml relative to the working directory.
func Load(logger *slog.Logger) (*Config, error) {
	return LoadFrom("config", logger)
}

// LoadFrom reads stage.<CONFIG_ENV>.yaml from dir. A missing file is not an
// error.
func LoadFrom(dir string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	fileName := filepath.Join(dir, fmt.Sprintf("stage.%s.yaml", v.GetString("env")))
	if _, err := os.Stat(fileName); err != nil {
		logger.Info("config file not found, using defaults", slog.String("file", fileName))
	} else {
		v.SetConfigFile(fileName)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
		logger.Info("config loaded", slog.String("file", fileName))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return &cfg, nil
}
