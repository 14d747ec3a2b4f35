package states

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestStateImplementations(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("ConfiguringState", func(t *testing.T) {
		state := NewConfiguringState()
		ctx := NewGameContext("test", logger)

		assert.Equal(t, PhaseConfiguring, state.Phase())
		assert.NoError(t, state.Enter(ctx))
		assert.NoError(t, state.Exit(ctx))
		assert.NoError(t, state.Validate(ctx))
	})

	t.Run("InProgressState", func(t *testing.T) {
		state := NewInProgressState()
		ctx := NewGameContext("test", logger)

		assert.Equal(t, PhaseInProgress, state.Phase())

		err := state.Validate(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least one robot and one intruder")

		ctx.Robots, ctx.Intruders = 1, 1
		assert.NoError(t, state.Validate(ctx))

		assert.True(t, ctx.StartTime.IsZero())
		assert.NoError(t, state.Enter(ctx))
		assert.False(t, ctx.StartTime.IsZero())

		// Re-entering after a pause keeps the original start
		start := ctx.StartTime
		assert.NoError(t, state.Enter(ctx))
		assert.Equal(t, start, ctx.StartTime)

		// Once started, losing a side does not block resuming
		ctx.Intruders = 0
		assert.NoError(t, state.Validate(ctx))
		assert.NoError(t, state.Exit(ctx))
	})

	t.Run("PausedState", func(t *testing.T) {
		state := NewPausedState()
		ctx := NewGameContext("test", logger)

		assert.Equal(t, PhasePaused, state.Phase())

		err := state.Validate(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "hasn't started")

		ctx.StartTime = time.Now()
		assert.NoError(t, state.Validate(ctx))

		assert.NoError(t, state.Enter(ctx))
		assert.False(t, ctx.PauseTime.IsZero())

		time.Sleep(10 * time.Millisecond)
		assert.NoError(t, state.Exit(ctx))
		assert.Greater(t, ctx.TotalPauseDuration, time.Duration(0))
		assert.True(t, ctx.PauseTime.IsZero())
	})

	t.Run("FinishedState", func(t *testing.T) {
		state := NewFinishedState()
		ctx := NewGameContext("test", logger)

		assert.Equal(t, PhaseFinished, state.Phase())

		err := state.Validate(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "requires a result")

		ctx.Result = "IntrudersWin"
		assert.NoError(t, state.Validate(ctx))
		assert.NoError(t, state.Enter(ctx))
		assert.NoError(t, state.Exit(ctx))
	})
}
