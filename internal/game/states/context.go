package states

import (
	"time"

	"github.com/rs/zerolog"
)

// GameContext provides game-specific information to states for making decisions
type GameContext struct {
	// GameID uniquely identifies this game instance
	GameID string

	// Logger for state-specific logging
	Logger zerolog.Logger

	// Robots and Intruders count the live entities of each side
	Robots    int
	Intruders int

	// TurnsPlayed is kept current by the game manager
	TurnsPlayed int

	// StartTime is when the game started (PhaseInProgress first entered)
	StartTime time.Time

	// PauseTime is when the game was paused (if paused)
	PauseTime time.Time

	// TotalPauseDuration tracks total time spent paused
	TotalPauseDuration time.Duration

	// Result is the final result once the game is finished
	Result string
}

// NewGameContext creates a new game context
func NewGameContext(gameID string, logger zerolog.Logger) *GameContext {
	return &GameContext{
		GameID: gameID,
		Logger: logger.With().Str("game_id", gameID).Logger(),
	}
}

// IsReady returns true if both sides have at least one entity
func (gc *GameContext) IsReady() bool {
	return gc.Robots >= 1 && gc.Intruders >= 1
}

// GetElapsedTime returns the time elapsed since game start, excluding pauses
func (gc *GameContext) GetElapsedTime() time.Duration {
	if gc.StartTime.IsZero() {
		return 0
	}

	elapsed := time.Since(gc.StartTime)
	return elapsed - gc.TotalPauseDuration
}
