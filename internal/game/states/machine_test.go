package states

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GridHeist/internal/game/core"
	"github.com/mitchelldurbincs/GridHeist/internal/game/events"
)

func TestGamePhase_String(t *testing.T) {
	tests := []struct {
		phase    GamePhase
		expected string
	}{
		{PhaseConfiguring, "Configuring"},
		{PhaseInProgress, "InProgress"},
		{PhasePaused, "Paused"},
		{PhaseFinished, "Finished"},
		{GamePhase(999), "Unknown(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.phase.String())
		})
	}
}

func TestParsePhase(t *testing.T) {
	for _, p := range []GamePhase{PhaseConfiguring, PhaseInProgress, PhasePaused, PhaseFinished} {
		parsed, err := ParsePhase(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	_, err := ParsePhase("Lobby")
	assert.Error(t, err)
}

func TestGamePhase_Properties(t *testing.T) {
	t.Run("IsTerminal", func(t *testing.T) {
		assert.True(t, PhaseFinished.IsTerminal())
		assert.False(t, PhaseInProgress.IsTerminal())
		assert.False(t, PhasePaused.IsTerminal())
	})

	t.Run("CanReceiveMoves", func(t *testing.T) {
		assert.True(t, PhaseInProgress.CanReceiveMoves())
		assert.False(t, PhaseConfiguring.CanReceiveMoves())
		assert.False(t, PhasePaused.CanReceiveMoves())
		assert.False(t, PhaseFinished.CanReceiveMoves())
	})

	t.Run("CanPlaceEntities", func(t *testing.T) {
		assert.True(t, PhaseConfiguring.CanPlaceEntities())
		assert.False(t, PhaseInProgress.CanPlaceEntities())
	})
}

func TestGamePhase_Transitions(t *testing.T) {
	allPhases := []GamePhase{PhaseConfiguring, PhaseInProgress, PhasePaused, PhaseFinished}
	tests := []struct {
		from    GamePhase
		allowed []GamePhase
	}{
		{PhaseConfiguring, []GamePhase{PhaseInProgress}},
		{PhaseInProgress, []GamePhase{PhasePaused, PhaseFinished}},
		{PhasePaused, []GamePhase{PhaseInProgress}},
		{PhaseFinished, []GamePhase{}},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.AllowedTransitions())

			for _, target := range allPhases {
				assert.Equal(t, contains(tt.allowed, target), tt.from.CanTransitionTo(target),
					"%s -> %s", tt.from, target)
			}
		})
	}
}

func contains(phases []GamePhase, p GamePhase) bool {
	for _, q := range phases {
		if q == p {
			return true
		}
	}
	return false
}

func TestGameContext(t *testing.T) {
	t.Run("NewGameContext", func(t *testing.T) {
		ctx := NewGameContext("test-game", zerolog.Nop())
		assert.Equal(t, "test-game", ctx.GameID)
		assert.Empty(t, ctx.Result)
	})

	t.Run("IsReady", func(t *testing.T) {
		ctx := NewGameContext("test-game", zerolog.Nop())
		assert.False(t, ctx.IsReady())

		ctx.Robots = 1
		assert.False(t, ctx.IsReady())

		ctx.Intruders = 3
		assert.True(t, ctx.IsReady())
	})

	t.Run("GetElapsedTime", func(t *testing.T) {
		ctx := NewGameContext("test-game", zerolog.Nop())
		assert.Equal(t, time.Duration(0), ctx.GetElapsedTime())

		ctx.StartTime = time.Now().Add(-10 * time.Second)
		elapsed := ctx.GetElapsedTime()
		assert.Greater(t, elapsed, 9*time.Second)
		assert.Less(t, elapsed, 11*time.Second)

		ctx.TotalPauseDuration = 5 * time.Second
		elapsed = ctx.GetElapsedTime()
		assert.Greater(t, elapsed, 4*time.Second)
		assert.Less(t, elapsed, 6*time.Second)
	})
}

func TestStateMachine(t *testing.T) {
	setup := func() (*StateMachine, *GameContext, *events.EventBus) {
		ctx := NewGameContext("test-game", zerolog.Nop())
		bus := events.NewEventBus()
		return NewStateMachine(ctx, bus), ctx, bus
	}

	t.Run("NewStateMachine", func(t *testing.T) {
		sm, _, _ := setup()
		assert.Equal(t, PhaseConfiguring, sm.CurrentPhase())
		assert.Len(t, sm.states, 4)
	})

	t.Run("Valid Transitions", func(t *testing.T) {
		sm, ctx, _ := setup()
		ctx.Robots, ctx.Intruders = 2, 3

		require.NoError(t, sm.TransitionTo(PhaseInProgress, "setup complete"))
		assert.Equal(t, PhaseInProgress, sm.CurrentPhase())
		assert.False(t, ctx.StartTime.IsZero())

		require.NoError(t, sm.TransitionTo(PhasePaused, "user paused"))
		assert.False(t, ctx.PauseTime.IsZero())

		time.Sleep(10 * time.Millisecond)
		require.NoError(t, sm.TransitionTo(PhaseInProgress, "user resumed"))
		assert.Greater(t, ctx.TotalPauseDuration, time.Duration(0))
		assert.True(t, ctx.PauseTime.IsZero())

		ctx.Result = core.RobotsWin.String()
		require.NoError(t, sm.TransitionTo(PhaseFinished, "last intruder captured"))
		assert.Equal(t, PhaseFinished, sm.CurrentPhase())
	})

	t.Run("Invalid Transitions", func(t *testing.T) {
		sm, ctx, _ := setup()
		ctx.Robots, ctx.Intruders = 1, 1

		err := sm.TransitionTo(PhasePaused, "pause during setup")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrInvalidState)
		assert.Contains(t, err.Error(), "invalid transition")
		assert.Equal(t, PhaseConfiguring, sm.CurrentPhase())

		require.NoError(t, sm.TransitionTo(PhaseInProgress, "start"))
		require.NoError(t, sm.TransitionTo(PhasePaused, "pause"))
		err = sm.TransitionTo(PhaseFinished, "finish while paused")
		assert.ErrorIs(t, err, core.ErrInvalidState)
		assert.Equal(t, PhasePaused, sm.CurrentPhase())
	})

	t.Run("State Validation", func(t *testing.T) {
		sm, ctx, _ := setup()

		ctx.Robots = 1
		err := sm.TransitionTo(PhaseInProgress, "no intruders")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one robot and one intruder")
		assert.Equal(t, PhaseConfiguring, sm.CurrentPhase())

		ctx.Intruders = 1
		require.NoError(t, sm.TransitionTo(PhaseInProgress, "ready"))

		err = sm.TransitionTo(PhaseFinished, "no result")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires a result")
		assert.Equal(t, PhaseInProgress, sm.CurrentPhase())
	})

	t.Run("History Tracking", func(t *testing.T) {
		sm, ctx, _ := setup()
		ctx.Robots, ctx.Intruders = 1, 1

		_ = sm.TransitionTo(PhaseInProgress, "reason1")
		_ = sm.TransitionTo(PhasePaused, "reason2")
		_ = sm.TransitionTo(PhaseInProgress, "reason3")

		ctx.TurnsPlayed = 4
		_ = sm.TransitionTo(PhasePaused, "reason4")

		history := sm.GetHistory()
		require.Len(t, history, 4)
		assert.Zero(t, history[0].Turn)
		assert.Equal(t, 4, history[3].Turn)

		assert.Equal(t, PhaseConfiguring, history[0].From)
		assert.Equal(t, PhaseInProgress, history[0].To)
		assert.Equal(t, "reason1", history[0].Reason)

		assert.Equal(t, PhaseInProgress, history[1].From)
		assert.Equal(t, PhasePaused, history[1].To)

		assert.Equal(t, PhasePaused, history[2].From)
		assert.Equal(t, PhaseInProgress, history[2].To)
		assert.Equal(t, "reason3", history[2].Reason)
	})

	t.Run("Publishes transitions", func(t *testing.T) {
		sm, ctx, bus := setup()
		ctx.Robots, ctx.Intruders = 1, 1

		var received []*events.StateTransitionEvent
		bus.SubscribeFunc(events.TypeStateTransition, func(e events.Event) {
			received = append(received, e.(*events.StateTransitionEvent))
		})

		require.NoError(t, sm.TransitionTo(PhaseInProgress, "start"))
		require.Len(t, received, 1)
		assert.Equal(t, "Configuring", received[0].FromPhase)
		assert.Equal(t, "InProgress", received[0].ToPhase)
		assert.Equal(t, "start", received[0].Reason)
		assert.Equal(t, "test-game", received[0].GameID())
	})

	t.Run("CanTransitionTo", func(t *testing.T) {
		sm, _, _ := setup()

		assert.True(t, sm.CanTransitionTo(PhaseInProgress))
		assert.False(t, sm.CanTransitionTo(PhasePaused))
		assert.False(t, sm.CanTransitionTo(PhaseFinished))
	})
}

// MockState for testing custom state implementations
type MockState struct {
	phase       GamePhase
	enterCalled bool
	exitCalled  bool
	enterError  error
	exitError   error
}

func (m *MockState) Phase() GamePhase { return m.phase }
func (m *MockState) Enter(*GameContext) error {
	m.enterCalled = true
	return m.enterError
}
func (m *MockState) Exit(*GameContext) error {
	m.exitCalled = true
	return m.exitError
}
func (m *MockState) Validate(*GameContext) error { return nil }

func TestStateMachine_CustomStates(t *testing.T) {
	ctx := NewGameContext("test-game", zerolog.Nop())
	sm := NewStateMachine(ctx, nil)

	t.Run("StateCallbacks", func(t *testing.T) {
		configuringMock := &MockState{phase: PhaseConfiguring}
		inProgressMock := &MockState{phase: PhaseInProgress}

		sm.RegisterState(configuringMock)
		sm.RegisterState(inProgressMock)

		require.NoError(t, sm.TransitionTo(PhaseInProgress, "test"))
		assert.True(t, configuringMock.exitCalled)
		assert.True(t, inProgressMock.enterCalled)
	})

	t.Run("Enter failure rolls back", func(t *testing.T) {
		failing := &MockState{phase: PhasePaused, enterError: assert.AnError}
		sm.RegisterState(failing)

		err := sm.TransitionTo(PhasePaused, "test")
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, PhaseInProgress, sm.CurrentPhase())
		assert.Len(t, sm.GetHistory(), 1, "failed transitions are not recorded")
	})
}

func TestStateMachine_HistoryIsBounded(t *testing.T) {
	ctx := NewGameContext("test-game", zerolog.Nop())
	ctx.Robots, ctx.Intruders = 1, 1
	sm := NewStateMachine(ctx, nil)
	require.NoError(t, sm.TransitionTo(PhaseInProgress, "start"))

	for i := 0; i < maxHistory; i++ {
		ctx.TurnsPlayed = i
		require.NoError(t, sm.TransitionTo(PhasePaused, "pause"))
		require.NoError(t, sm.TransitionTo(PhaseInProgress, "resume"))
	}

	history := sm.GetHistory()
	require.Len(t, history, maxHistory)
	assert.Equal(t, PhasePaused, history[len(history)-1].From)
	assert.Equal(t, maxHistory-1, history[len(history)-1].Turn)
}
