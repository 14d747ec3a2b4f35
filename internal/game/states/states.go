package states

import (
	"fmt"
	"time"
)

// ConfiguringState is the setup phase where the grid is populated
type ConfiguringState struct{}

func NewConfiguringState() State {
	return &ConfiguringState{}
}

func (s *ConfiguringState) Phase() GamePhase {
	return PhaseConfiguring
}

func (s *ConfiguringState) Enter(ctx *GameContext) error {
	ctx.Logger.Debug().Msg("Entering Configuring state")
	return nil
}

func (s *ConfiguringState) Exit(ctx *GameContext) error {
	ctx.Logger.Info().
		Int("robots", ctx.Robots).
		Int("intruders", ctx.Intruders).
		Msg("Setup complete, game starting")
	return nil
}

func (s *ConfiguringState) Validate(ctx *GameContext) error {
	return nil
}

// InProgressState represents active gameplay
type InProgressState struct{}

func NewInProgressState() State {
	return &InProgressState{}
}

func (s *InProgressState) Phase() GamePhase {
	return PhaseInProgress
}

func (s *InProgressState) Enter(ctx *GameContext) error {
	if ctx.StartTime.IsZero() {
		ctx.StartTime = time.Now()
		ctx.Logger.Info().
			Time("start_time", ctx.StartTime).
			Msg("Game started")
	}
	return nil
}

func (s *InProgressState) Exit(ctx *GameContext) error {
	ctx.Logger.Debug().
		Dur("elapsed", ctx.GetElapsedTime()).
		Msg("Exiting in progress state")
	return nil
}

func (s *InProgressState) Validate(ctx *GameContext) error {
	if !ctx.IsReady() && ctx.StartTime.IsZero() {
		return fmt.Errorf("game needs at least one robot and one intruder: have %d robots, %d intruders",
			ctx.Robots, ctx.Intruders)
	}
	return nil
}

// PausedState represents a paused game
type PausedState struct{}

func NewPausedState() State {
	return &PausedState{}
}

func (s *PausedState) Phase() GamePhase {
	return PhasePaused
}

func (s *PausedState) Enter(ctx *GameContext) error {
	ctx.PauseTime = time.Now()
	ctx.Logger.Info().
		Time("pause_time", ctx.PauseTime).
		Msg("Game paused")
	return nil
}

func (s *PausedState) Exit(ctx *GameContext) error {
	if !ctx.PauseTime.IsZero() {
		pauseDuration := time.Since(ctx.PauseTime)
		ctx.TotalPauseDuration += pauseDuration
		ctx.PauseTime = time.Time{}
		ctx.Logger.Info().
			Dur("pause_duration", pauseDuration).
			Dur("total_pause_duration", ctx.TotalPauseDuration).
			Msg("Game resumed")
	}
	return nil
}

func (s *PausedState) Validate(ctx *GameContext) error {
	if ctx.StartTime.IsZero() {
		return fmt.Errorf("cannot pause a game that hasn't started")
	}
	return nil
}

// FinishedState represents a completed game
type FinishedState struct{}

func NewFinishedState() State {
	return &FinishedState{}
}

func (s *FinishedState) Phase() GamePhase {
	return PhaseFinished
}

func (s *FinishedState) Enter(ctx *GameContext) error {
	ctx.Logger.Info().
		Str("result", ctx.Result).
		Dur("game_duration", ctx.GetElapsedTime()).
		Msg("Game finished")
	return nil
}

func (s *FinishedState) Exit(ctx *GameContext) error {
	return nil
}

func (s *FinishedState) Validate(ctx *GameContext) error {
	if ctx.Result == "" {
		return fmt.Errorf("finished state requires a result")
	}
	return nil
}
