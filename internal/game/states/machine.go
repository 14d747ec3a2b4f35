package states

import (
	"fmt"
	"time"

	"github.com/mitchelldurbincs/GridHeist/internal/game/core"
	"github.com/mitchelldurbincs/GridHeist/internal/game/events"
)

// maxHistory bounds the recorded transitions of one game
const maxHistory = 256

// State is one phase of a game with its entry and exit hooks
type State interface {
	Phase() GamePhase

	// Validate reports whether ctx allows entering this phase
	Validate(ctx *GameContext) error

	Enter(ctx *GameContext) error
	Exit(ctx *GameContext) error
}

// Transition is one recorded phase change
type Transition struct {
	From      GamePhase
	To        GamePhase
	Turn      int
	Timestamp time.Time
	Reason    string
}

// StateMachine drives a game through its phases. Like the grid it performs no
// locking; the owner of the game serializes access.
type StateMachine struct {
	current   GamePhase
	states    map[GamePhase]State
	context   *GameContext
	history   []Transition
	publisher events.Publisher
}

// NewStateMachine creates a machine in PhaseConfiguring. publisher may be nil.
func NewStateMachine(ctx *GameContext, publisher events.Publisher) *StateMachine {
	sm := &StateMachine{
		current:   PhaseConfiguring,
		states:    make(map[GamePhase]State, 4),
		context:   ctx,
		publisher: publisher,
	}
	for _, s := range []State{
		NewConfiguringState(),
		NewInProgressState(),
		NewPausedState(),
		NewFinishedState(),
	} {
		sm.RegisterState(s)
	}
	return sm
}

// RegisterState replaces the implementation of state.Phase()
func (sm *StateMachine) RegisterState(state State) {
	sm.states[state.Phase()] = state
}

func (sm *StateMachine) CurrentPhase() GamePhase { return sm.current }

func (sm *StateMachine) GetContext() *GameContext { return sm.context }

func (sm *StateMachine) CanTransitionTo(target GamePhase) bool {
	return sm.current.CanTransitionTo(target)
}

// TransitionTo moves the game to target. A rejected transition leaves the
// phase and the history unchanged.
func (sm *StateMachine) TransitionTo(target GamePhase, reason string) error {
	from := sm.current
	if !from.CanTransitionTo(target) {
		return fmt.Errorf("invalid transition from %s to %s: %w", from, target, core.ErrInvalidState)
	}

	next, ok := sm.states[target]
	if !ok {
		return fmt.Errorf("no state implementation for phase %s", target)
	}
	if err := next.Validate(sm.context); err != nil {
		return fmt.Errorf("cannot enter %s: %w", target, err)
	}

	if prev, ok := sm.states[from]; ok {
		if err := prev.Exit(sm.context); err != nil {
			// Exit hooks only release bookkeeping; the transition still happens
			sm.context.Logger.Error().
				Err(err).
				Str("from_phase", from.String()).
				Str("to_phase", target.String()).
				Msg("Error exiting state")
		}
	}

	sm.current = target
	if err := next.Enter(sm.context); err != nil {
		sm.current = from
		return fmt.Errorf("failed to enter state %s: %w", target, err)
	}

	sm.record(Transition{
		From:      from,
		To:        target,
		Turn:      sm.context.TurnsPlayed,
		Timestamp: time.Now(),
		Reason:    reason,
	})

	if sm.publisher != nil {
		sm.publisher.Publish(events.NewStateTransitionEvent(sm.context.GameID, from.String(), target.String(), reason))
	}

	ev := sm.context.Logger.Info()
	if target == PhasePaused || from == PhasePaused {
		ev = sm.context.Logger.Debug()
	}
	ev.Str("from_phase", from.String()).
		Str("to_phase", target.String()).
		Int("turn", sm.context.TurnsPlayed).
		Str("reason", reason).
		Msg("Phase changed")
	return nil
}

func (sm *StateMachine) record(t Transition) {
	if len(sm.history) == maxHistory {
		copy(sm.history, sm.history[1:])
		sm.history = sm.history[:maxHistory-1]
	}
	sm.history = append(sm.history, t)
}

// GetHistory returns a copy of the recorded transitions, oldest first
func (sm *StateMachine) GetHistory() []Transition {
	out := make([]Transition, len(sm.history))
	copy(out, sm.history)
	return out
}
