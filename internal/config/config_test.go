package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	cfg = nil
	v = nil
}

func TestInit(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
game:
  rows: 12
  cols: 8
  first_side: intruders
mapgen:
  obstacle_percent: 20
  seed: 42
logging:
  format: json
session:
  max_games: 5
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))
	reset()

	require.NoError(t, Init(configFile))

	c := Get()
	assert.Equal(t, 12, c.Game.Rows)
	assert.Equal(t, 8, c.Game.Cols)
	assert.Equal(t, "intruders", c.Game.FirstSide)
	assert.Equal(t, 20, c.Mapgen.ObstaclePercent)
	assert.Equal(t, int64(42), c.Mapgen.Seed)
	assert.Equal(t, "json", c.Logging.Format)
	assert.Equal(t, 5, c.Session.MaxGames)

	// Untouched keys keep their defaults
	assert.Equal(t, 200, c.Game.MaxTurns)
	assert.Equal(t, 3, c.Mapgen.Intruders)
	assert.True(t, c.Autopilot.Enabled)
	assert.Equal(t, configFile, ConfigFilePath())
}

func TestInitWithDefaults(t *testing.T) {
	reset()

	require.NoError(t, Init("/non/existent/path/config.yaml"))

	c := Get()
	assert.Equal(t, 10, c.Game.Rows)
	assert.Equal(t, 10, c.Game.Cols)
	assert.Equal(t, 200, c.Game.MaxTurns)
	assert.Equal(t, "robots", c.Game.FirstSide)
	assert.Equal(t, MapgenConfig{ObstaclePercent: 15, ExitPercent: 10, Robots: 2, Intruders: 3, Bags: 4}, c.Mapgen)
	assert.Equal(t, LoggingConfig{Level: "info", Format: "console"}, c.Logging)
	assert.Equal(t, 100, c.Session.MaxGames)
	assert.True(t, c.Autopilot.Enabled)
}

func TestInitRejectsInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()

	broken := filepath.Join(tmpDir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("game: [rows"), 0644))
	reset()
	assert.Error(t, Init(broken))

	invalid := filepath.Join(tmpDir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("game:\n  rows: 0\n"), 0644))
	reset()
	err := Init(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game.rows")
}

func TestEnvironmentVariables(t *testing.T) {
	reset()
	t.Setenv("HEIST_GAME_ROWS", "30")
	t.Setenv("HEIST_LOGGING_LEVEL", "debug")
	t.Setenv("HEIST_AUTOPILOT_ENABLED", "false")

	require.NoError(t, Init(""))

	c := Get()
	assert.Equal(t, 30, c.Game.Rows)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.False(t, c.Autopilot.Enabled)
}

func TestSet(t *testing.T) {
	reset()
	require.NoError(t, Init(""))

	require.NoError(t, Set("game.rows", 35))
	require.NoError(t, Set("mapgen.bags", 9))

	c := Get()
	assert.Equal(t, 35, c.Game.Rows)
	assert.Equal(t, 9, c.Mapgen.Bags)
}

func TestSetReportsDecodeErrors(t *testing.T) {
	reset()
	require.NoError(t, Init(""))

	err := Set("game.rows", "many")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game.rows")
}

func TestLoadEnvironmentConfig(t *testing.T) {
	tmpDir := t.TempDir()

	baseConfig := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(baseConfig, []byte(`
game:
  rows: 10
session:
  max_games: 10
`), 0644))

	envConfig := filepath.Join(tmpDir, "config.prod.yaml")
	require.NoError(t, os.WriteFile(envConfig, []byte(`
game:
  rows: 16
logging:
  level: error
`), 0644))

	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer func() { _ = os.Chdir(oldWd) }()

	reset()
	require.NoError(t, Init(baseConfig))
	require.NoError(t, LoadEnvironmentConfig("prod"))
	require.NoError(t, LoadEnvironmentConfig(""))

	c := Get()
	assert.Equal(t, 16, c.Game.Rows, "overridden")
	assert.Equal(t, "error", c.Logging.Level, "new value")
	assert.Equal(t, 10, c.Session.MaxGames, "kept from base")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Game:    GameConfig{Rows: 5, Cols: 5, MaxTurns: 10, FirstSide: "robots"},
			Mapgen:  MapgenConfig{ObstaclePercent: 10, ExitPercent: 10, Robots: 1, Intruders: 1, Bags: 1},
			Logging: LoggingConfig{Level: "info", Format: "json"},
		}
	}
	require.NoError(t, Validate(valid()))

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"zero cols", func(c *Config) { c.Game.Cols = 0 }, "game.rows and game.cols"},
		{"zero turns", func(c *Config) { c.Game.MaxTurns = 0 }, "game.max_turns"},
		{"unknown side", func(c *Config) { c.Game.FirstSide = "bags" }, "game.first_side"},
		{"obstacles over 100", func(c *Config) { c.Mapgen.ObstaclePercent = 101 }, "mapgen.obstacle_percent"},
		{"negative exits", func(c *Config) { c.Mapgen.ExitPercent = -1 }, "mapgen.exit_percent"},
		{"no bags", func(c *Config) { c.Mapgen.Bags = 0 }, "mapgen.robots"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"negative max games", func(c *Config) { c.Session.MaxGames = -1 }, "session.max_games"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := Validate(c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWatchConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("game:\n  rows: 10\n"), 0644))

	reset()
	require.NoError(t, Init(configFile))

	rows := make(chan int, 8)
	WatchConfig(func(c *Config, err error) {
		if err != nil {
			return
		}
		select {
		case rows <- c.Game.Rows:
		default:
		}
	})

	require.NoError(t, os.WriteFile(configFile, []byte("game:\n  rows: 14\n"), 0644))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case r := <-rows:
			if r == 14 {
				return
			}
		case <-timeout:
			t.Fatal("config change was not observed")
		}
	}
}
