package rules

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GridHeist/internal/game/core"
)

// WinConditionChecker handles game over detection and result reporting
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// CheckGameOver reports whether the game is over and its result.
// The result is InProgress while any intruder is live.
func (wc *WinConditionChecker) CheckGameOver(g *core.Grid) (bool, core.Result) {
	wc.logger.Debug().Msg("Checking game over conditions")
	if !g.IsGameOver() {
		return false, core.InProgress
	}

	result := g.ResultSummary()
	wc.logger.Info().
		Str("result", result.String()).
		Int("bags_stolen", g.CarriedBagCount()).
		Msg("Winner determined")
	return true, result
}
