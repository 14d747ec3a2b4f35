package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Game      GameConfig      `mapstructure:"game"`
	Mapgen    MapgenConfig    `mapstructure:"mapgen"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Session   SessionConfig   `mapstructure:"session"`
	Autopilot AutopilotConfig `mapstructure:"autopilot"`
}

// GameConfig holds grid and demo loop settings
type GameConfig struct {
	Rows      int    `mapstructure:"rows"`
	Cols      int    `mapstructure:"cols"`
	MaxTurns  int    `mapstructure:"max_turns"`
	FirstSide string `mapstructure:"first_side"`
}

// MapgenConfig holds random population settings
type MapgenConfig struct {
	ObstaclePercent int   `mapstructure:"obstacle_percent"`
	ExitPercent     int   `mapstructure:"exit_percent"`
	Robots          int   `mapstructure:"robots"`
	Intruders       int   `mapstructure:"intruders"`
	Bags            int   `mapstructure:"bags"`
	Seed            int64 `mapstructure:"seed"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SessionConfig holds hosted game settings
type SessionConfig struct {
	MaxGames int `mapstructure:"max_games"`
}

// AutopilotConfig holds AI assist settings
type AutopilotConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("game.rows", 10)
	v.SetDefault("game.cols", 10)
	v.SetDefault("game.max_turns", 200)
	v.SetDefault("game.first_side", "robots")

	v.SetDefault("mapgen.obstacle_percent", 15)
	v.SetDefault("mapgen.exit_percent", 10)
	v.SetDefault("mapgen.robots", 2)
	v.SetDefault("mapgen.intruders", 3)
	v.SetDefault("mapgen.bags", 4)
	v.SetDefault("mapgen.seed", 0) // 0 seeds from the clock

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("session.max_games", 100)

	v.SetDefault("autopilot.enabled", true)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/gridheist")
	}

	v.SetEnvPrefix("HEIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing file means defaults; a broken one is an error
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// LoadEnvironmentConfig merges config.<env>.yaml over the loaded config
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)
	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}
	return Validate(cfg)
}

// Set allows runtime config updates. The value is not validated; callers
// run Validate once their updates are done.
func Set(key string, value interface{}) error {
	v.Set(key, value)
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("apply %s: %w", key, err)
	}
	return nil
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. A reloaded config that
// fails validation is reported to onChange and not applied.
func WatchConfig(onChange func(*Config, error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		err := v.Unmarshal(next)
		if err == nil {
			err = Validate(next)
		}
		if err == nil {
			*cfg = *next
		}
		if onChange != nil {
			onChange(cfg, err)
		}
	})
	v.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Game.Rows < 1 || c.Game.Cols < 1 {
		return fmt.Errorf("game.rows and game.cols must be positive")
	}
	if c.Game.MaxTurns < 1 {
		return fmt.Errorf("game.max_turns must be positive")
	}
	switch c.Game.FirstSide {
	case "robots", "intruders":
	default:
		return fmt.Errorf("game.first_side must be robots or intruders, got %q", c.Game.FirstSide)
	}

	if c.Mapgen.ObstaclePercent < 0 || c.Mapgen.ObstaclePercent > 100 {
		return fmt.Errorf("mapgen.obstacle_percent must be between 0 and 100")
	}
	if c.Mapgen.ExitPercent < 0 || c.Mapgen.ExitPercent > 100 {
		return fmt.Errorf("mapgen.exit_percent must be between 0 and 100")
	}
	if c.Mapgen.Robots < 1 || c.Mapgen.Intruders < 1 || c.Mapgen.Bags < 1 {
		return fmt.Errorf("mapgen.robots, mapgen.intruders and mapgen.bags must be at least 1")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	if c.Session.MaxGames < 0 {
		return fmt.Errorf("session.max_games must be non-negative")
	}
	return nil
}
