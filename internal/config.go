package internal

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

type NovaRelConfig struct {
	AppName string `mapstructure:"app_name"`

	Catalog struct {
		Name string `mapstructure:"name"`
	} `mapstructure:"catalog"`

	Import struct {
		Dir     string   `mapstructure:"dir"`
		Files   []string `mapstructure:"files"`
		Queries []string `mapstructure:"queries"`
	} `mapstructure:"import"`

	Server struct {
		Addr  string `mapstructure:"addr"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"server"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Client struct {
		History string `mapstructure:"history"`
	} `mapstructure:"client"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("app_name", "novarel")
	v.SetDefault("catalog.name", "main")
	v.SetDefault("server.addr", "127.0.0.1:8866")
	v.SetDefault("server.debug", false)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("NOVAREL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads a YAML config file. An empty path yields the defaults,
// still subject to NOVAREL_* environment overrides.
func LoadConfig(path string) (*NovaRelConfig, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg NovaRelConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// SlogLevel maps log.level to a slog level. Debug wins when server.debug
// is set.
func (c *NovaRelConfig) SlogLevel() slog.Level {
	if c.Server.Debug {
		return slog.LevelDebug
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
