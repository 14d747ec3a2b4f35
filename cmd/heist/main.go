package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/mitchelldurbincs/GridHeist/internal/config"
	"github.com/mitchelldurbincs/GridHeist/internal/game"
	"github.com/mitchelldurbincs/GridHeist/internal/game/autopilot"
	"github.com/mitchelldurbincs/GridHeist/internal/game/core"
	"github.com/mitchelldurbincs/GridHeist/internal/game/events"
	"github.com/mitchelldurbincs/GridHeist/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/GridHeist/internal/game/mapgen"
	"github.com/mitchelldurbincs/GridHeist/internal/game/states"
	"github.com/mitchelldurbincs/GridHeist/internal/session"
)

func main() {
	cmd := &cli.Command{
		Name:  "heist",
		Usage: "play a robots-versus-intruders heist on a random grid",
		Flags: flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			cfg := config.Get()
			setupLogging(cfg.Logging)

			if cmd.Bool("watch-config") && config.ConfigFilePath() != "" {
				config.WatchConfig(func(c *config.Config, err error) {
					if err != nil {
						log.Warn().Err(err).Msg("Ignoring invalid config change")
						return
					}
					zerolog.SetGlobalLevel(parseLevel(c.Logging.Level))
					log.Info().Str("level", c.Logging.Level).Msg("Config reloaded")
				})
			}

			var board io.Writer = os.Stdout
			if cmd.Bool("quiet") {
				board = io.Discard
			}
			_, err := play(ctx, cfg, board)
			return err
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("Heist failed")
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "path to config file"},
		&cli.StringFlag{Name: "env", Usage: "merge config.<env>.yaml over the config file"},
		&cli.IntFlag{Name: "rows", Usage: "grid rows (overrides game.rows)"},
		&cli.IntFlag{Name: "cols", Usage: "grid columns (overrides game.cols)"},
		&cli.IntFlag{Name: "max-turns", Usage: "stop after this many turns (overrides game.max_turns)"},
		&cli.StringFlag{Name: "first-side", Usage: "robots or intruders (overrides game.first_side)"},
		&cli.IntFlag{Name: "seed", Usage: "map seed, 0 seeds from the clock (overrides mapgen.seed)"},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (overrides logging.level)"},
		&cli.StringFlag{Name: "log-format", Usage: "console or json (overrides logging.format)"},
		&cli.BoolFlag{Name: "no-autopilot", Usage: "use each entity's own action instead of the autopilot"},
		&cli.BoolFlag{Name: "quiet", Usage: "do not print the board after each turn"},
		&cli.BoolFlag{Name: "watch-config", Usage: "reload the log level when the config file changes"},
	}
}

// loadConfig reads the config file, merges the environment overlay and
// applies flag overrides
func loadConfig(cmd *cli.Command) error {
	if err := config.Init(cmd.String("config")); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	if err := config.LoadEnvironmentConfig(cmd.String("env")); err != nil {
		return fmt.Errorf("failed to load %q config: %w", cmd.String("env"), err)
	}

	overrides := []struct {
		flag, key string
		value     func() interface{}
	}{
		{"rows", "game.rows", func() interface{} { return cmd.Int("rows") }},
		{"cols", "game.cols", func() interface{} { return cmd.Int("cols") }},
		{"max-turns", "game.max_turns", func() interface{} { return cmd.Int("max-turns") }},
		{"first-side", "game.first_side", func() interface{} { return cmd.String("first-side") }},
		{"seed", "mapgen.seed", func() interface{} { return cmd.Int("seed") }},
		{"log-level", "logging.level", func() interface{} { return cmd.String("log-level") }},
		{"log-format", "logging.format", func() interface{} { return cmd.String("log-format") }},
	}
	for _, o := range overrides {
		if !cmd.IsSet(o.flag) {
			continue
		}
		if err := config.Set(o.key, o.value()); err != nil {
			return fmt.Errorf("--%s: %w", o.flag, err)
		}
	}
	if cmd.Bool("no-autopilot") {
		if err := config.Set("autopilot.enabled", false); err != nil {
			return err
		}
	}
	return config.Validate(config.Get())
}

func parseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

func setupLogging(c config.LoggingConfig) {
	zerolog.SetGlobalLevel(parseLevel(c.Level))

	if c.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
}

func parseSide(s string) core.Side {
	if s == "intruders" {
		return core.SideIntruders
	}
	return core.SideRobots
}

// play populates a grid, hosts it in a registry and runs it until it finishes
// or the turn cap is hit. The board is written to out after every turn the
// grid listeners were told about.
func play(ctx context.Context, cfg *config.Config, out io.Writer) (game.TurnState, error) {
	seed := cfg.Mapgen.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Info().Int64("seed", seed).Msg("Game seed")
	rng := rand.New(rand.NewSource(seed))

	grid, err := core.NewGrid(cfg.Game.Rows, cfg.Game.Cols, core.WithLogger(log.Logger))
	if err != nil {
		return game.TurnState{}, err
	}
	summary, err := mapgen.NewGenerator(mapgen.MapConfig{
		ObstaclePercent: cfg.Mapgen.ObstaclePercent,
		ExitPercent:     cfg.Mapgen.ExitPercent,
		Robots:          cfg.Mapgen.Robots,
		Intruders:       cfg.Mapgen.Intruders,
		Bags:            cfg.Mapgen.Bags,
	}, rng).Populate(grid)
	if err != nil {
		return game.TurnState{}, fmt.Errorf("populate grid: %w", err)
	}
	log.Info().
		Int("obstacles", summary.Obstacles).
		Int("exits", summary.Exits).
		Int("robots", summary.Robots).
		Int("intruders", summary.Intruders).
		Int("bags", summary.Bags).
		Msg("Grid populated")

	registry := session.NewRegistry(cfg.Session.MaxGames, log.Logger)
	s, err := registry.Create(grid, parseSide(cfg.Game.FirstSide))
	if err != nil {
		return game.TurnState{}, err
	}
	defer func() { _ = registry.Delete(s.ID()) }()

	changed := false
	listener := grid.Subscribe(func() { changed = true })
	defer grid.Unsubscribe(listener)

	pilot := autopilot.New(log.Logger)
	fmt.Fprintf(out, "Initial grid:\n%s\n", grid)

	var final game.TurnState
	err = s.Do(func(m *game.Manager) error {
		eventLog := subscribers.NewLoggerSubscriber("heist-events", log.Logger, zerolog.DebugLevel)
		eventLog.SetEventFilter([]string{
			events.TypeIntruderCaptured,
			events.TypeIntruderEscaped,
			events.TypeBagPickedUp,
			events.TypeGameEnded,
		})
		m.EventBus().Subscribe(eventLog)

		if err := m.Start(); err != nil {
			return err
		}

		for turn := 0; turn < cfg.Game.MaxTurns && m.Phase() == states.PhaseInProgress; turn++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			side := m.Turn().Side
			changed = false

			if cfg.Autopilot.Enabled {
				if _, err := pilot.Play(m); err != nil {
					return fmt.Errorf("turn %d: %w", turn+1, err)
				}
			} else if _, err := m.AutoTurn(); err != nil {
				return fmt.Errorf("turn %d: %w", turn+1, err)
			}

			if changed {
				fmt.Fprintf(out, "Turn %d (%s):\n%s\n", turn+1, side, grid)
			}
		}

		final = m.Turn()
		result := m.Result()
		if m.Phase() != states.PhaseFinished {
			fmt.Fprintf(out, "Stopped after %d turns, %d intruders still inside\n", final.TurnsPlayed, len(grid.Intruders()))
		} else {
			fmt.Fprintf(out, "Game over after %d turns: %s (%d captured, %d escaped, %d bags stolen)\n",
				final.TurnsPlayed, result, final.Captures, final.Escapes, grid.CarriedBagCount())
		}
		return nil
	})
	return final, err
}
