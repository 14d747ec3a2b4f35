package states

import "fmt"

// GamePhase represents the current phase of a game
type GamePhase int

const (
	// PhaseConfiguring - grid creation and entity placement
	PhaseConfiguring GamePhase = iota

	// PhaseInProgress - moves are accepted
	PhaseInProgress

	// PhasePaused - move acceptance suspended
	PhasePaused

	// PhaseFinished - no live intruder remains
	PhaseFinished
)

// String returns the string representation of a GamePhase
func (p GamePhase) String() string {
	switch p {
	case PhaseConfiguring:
		return "Configuring"
	case PhaseInProgress:
		return "InProgress"
	case PhasePaused:
		return "Paused"
	case PhaseFinished:
		return "Finished"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if the phase represents a terminal state
func (p GamePhase) IsTerminal() bool {
	return p == PhaseFinished
}

// CanReceiveMoves returns true if the game accepts moves in this phase
func (p GamePhase) CanReceiveMoves() bool {
	return p == PhaseInProgress
}

// CanPlaceEntities returns true if the grid may still be populated in this phase
func (p GamePhase) CanPlaceEntities() bool {
	return p == PhaseConfiguring
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p GamePhase) AllowedTransitions() []GamePhase {
	switch p {
	case PhaseConfiguring:
		return []GamePhase{PhaseInProgress}
	case PhaseInProgress:
		return []GamePhase{PhasePaused, PhaseFinished}
	case PhasePaused:
		return []GamePhase{PhaseInProgress}
	default:
		return []GamePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to a GamePhase
func ParsePhase(s string) (GamePhase, error) {
	switch s {
	case "Configuring":
		return PhaseConfiguring, nil
	case "InProgress":
		return PhaseInProgress, nil
	case "Paused":
		return PhasePaused, nil
	case "Finished":
		return PhaseFinished, nil
	default:
		return PhaseConfiguring, fmt.Errorf("unknown game phase %q", s)
	}
}
